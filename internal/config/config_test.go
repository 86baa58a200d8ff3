package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boatgps_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
# BoatGPS test configuration
GPS_SERIAL_PORT=/dev/serial0
GPS_BAUD_RATE=9600
BROADCAST_ADDR=255.255.255.255:17017
BROADCAST_INTERVAL=1000
`

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "/dev/serial0", cfg.GPSSerialPort)
	assert.Equal(t, 9600, cfg.GPSBaudRate)
	assert.Equal(t, "255.255.255.255:17017", cfg.BroadcastAddr)
	assert.Equal(t, 1000, cfg.BroadcastInterval)

	// Defaults
	assert.Equal(t, 2, cfg.BroadcastRetries)
	assert.Equal(t, 5000, cfg.StatusInterval)
	assert.Equal(t, "gps_", cfg.StoragePrefix)
	assert.Equal(t, "boatgps/fix", cfg.TopicFix)
	assert.Equal(t, 8080, cfg.WebServerPort)
	assert.False(t, cfg.StorageEnabled)
	assert.False(t, cfg.MQTTEnabled)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
BOAT_NAME=Optimist-42
BROADCAST_RETRIES=4
STATUS_INTERVAL=10000
STORAGE_ENABLED=true
STORAGE_DIR=/mnt/sd
STORAGE_PREFIX=track_
MQTT_ENABLED=true
MQTT_BROKER=tcp://localhost:1883
MQTT_CLIENT_ID=boatgps-tracker
TOPIC_FIX=boats/42/fix
LED_ENABLED=true
LED_PIN=GPIO27
`))
	require.NoError(t, err)

	assert.Equal(t, "Optimist-42", cfg.BoatName)
	assert.Equal(t, 4, cfg.BroadcastRetries)
	assert.Equal(t, 10000, cfg.StatusInterval)
	assert.True(t, cfg.StorageEnabled)
	assert.Equal(t, "/mnt/sd", cfg.StorageDir)
	assert.Equal(t, "track_", cfg.StoragePrefix)
	assert.True(t, cfg.MQTTEnabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTTBroker)
	assert.Equal(t, "boats/42/fix", cfg.TopicFix)
	assert.True(t, cfg.LEDEnabled)
	assert.Equal(t, "GPIO27", cfg.LEDPin)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"NO_SUCH_KEY=1\n"))
	assert.ErrorContains(t, err, "unknown config key")
}

func TestLoadRejectsMalformedLine(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"not a key value pair\n"))
	assert.ErrorContains(t, err, "invalid config line")
}

func TestValidateRequiredFields(t *testing.T) {
	_, err := Load(writeConfig(t, "GPS_SERIAL_PORT=/dev/serial0\n"))
	assert.ErrorContains(t, err, "GPS_BAUD_RATE is required")

	_, err = Load(writeConfig(t, "GPS_SERIAL_PORT=/dev/serial0\nGPS_BAUD_RATE=9600\n"))
	assert.ErrorContains(t, err, "BROADCAST_ADDR is required")
}

func TestValidateMQTTBrokerWhenEnabled(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"MQTT_ENABLED=true\n"))
	assert.ErrorContains(t, err, "MQTT_BROKER is required")
}

func TestValidateLEDPinWhenEnabled(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+"LED_ENABLED=true\n"))
	assert.ErrorContains(t, err, "LED_PIN is required")
}
