package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Identity
	BoatName string // broadcast identity label; MAC string when empty

	// GPS receiver
	GPSSerialPort string
	GPSBaudRate   int

	// Broadcast
	BroadcastAddr     string // UDP broadcast group, e.g. 255.255.255.255:17017
	BroadcastInterval int    // milliseconds
	BroadcastRetries  int    // extra attempts after the first
	StatusInterval    int    // milliseconds

	// Storage
	StorageEnabled bool
	StorageDir     string
	StoragePrefix  string

	// MQTT mirror (optional shoreside uplink)
	MQTTEnabled     bool
	MQTTBroker      string
	MQTTClientID    string
	MQTTClientIDWeb string
	TopicFix        string

	// Web status server
	WebServerPort int

	// Status LED
	LEDEnabled bool
	LEDPin     string
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &Config{
		BroadcastRetries: 2,
		StatusInterval:   5000,
		StorageDir:       ".",
		StoragePrefix:    "gps_",
		TopicFix:         "boatgps/fix",
		WebServerPort:    8080,
	}
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "BOAT_NAME":
		c.BoatName = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate

	// Broadcast
	case "BROADCAST_ADDR":
		c.BroadcastAddr = value
	case "BROADCAST_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BROADCAST_INTERVAL %q: %w", value, err)
		}
		c.BroadcastInterval = interval
	case "BROADCAST_RETRIES":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid BROADCAST_RETRIES %q: %w", value, err)
		}
		if retries < 0 {
			return fmt.Errorf("BROADCAST_RETRIES must be >= 0, got %d", retries)
		}
		c.BroadcastRetries = retries
	case "STATUS_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid STATUS_INTERVAL %q: %w", value, err)
		}
		c.StatusInterval = interval

	// Storage
	case "STORAGE_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_ENABLED %q: %w", value, err)
		}
		c.StorageEnabled = enabled
	case "STORAGE_DIR":
		c.StorageDir = value
	case "STORAGE_PREFIX":
		c.StoragePrefix = value

	// MQTT
	case "MQTT_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid MQTT_ENABLED %q: %w", value, err)
		}
		c.MQTTEnabled = enabled
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_FIX":
		c.TopicFix = value

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// LED
	case "LED_ENABLED":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid LED_ENABLED %q: %w", value, err)
		}
		c.LEDEnabled = enabled
	case "LED_PIN":
		c.LEDPin = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	if c.GPSBaudRate == 0 {
		return fmt.Errorf("GPS_BAUD_RATE is required")
	}
	if c.BroadcastAddr == "" {
		return fmt.Errorf("BROADCAST_ADDR is required")
	}
	if c.BroadcastInterval == 0 {
		return fmt.Errorf("BROADCAST_INTERVAL is required")
	}
	if c.MQTTEnabled && c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required when MQTT_ENABLED")
	}
	if c.LEDEnabled && c.LEDPin == "" {
		return fmt.Errorf("LED_PIN is required when LED_ENABLED")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
