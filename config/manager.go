package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"reflect"
	"strconv"
	"strings"
)

const (
	errMissingAppID       = "missing app id: set app_id in the config file or %s_APP_ID"
	errMissingAccessToken = "missing access token: set access_token in the config file or %s_ACCESS_TOKEN"
	maskedValue           = "********"
)

type Manager struct {
	configStore Store
	Config      Config
}

func NewManager(cs Store) *Manager {
	configuration := cs.ReadDefaults()

	userConfig, err := cs.Read()
	if err == nil {
		configuration = replaceByConfigFile(configuration, userConfig)
	}

	return &Manager{configStore: cs, Config: configuration}
}

func (c *Manager) WithEnvironment() *Manager {
	c.Config = replaceByEnvironment(c.Config)
	return c
}

// EnvPrefix is the prefix of every environment override, e.g. JSSDK_APP_ID.
func (c *Manager) EnvPrefix() string {
	return strings.ToUpper(c.Config.Name)
}

// Validate reports the settings without which no ticket can be requested.
func (c *Manager) Validate() error {
	if c.Config.AppID == "" {
		return fmt.Errorf(errMissingAppID, c.EnvPrefix())
	}
	if c.Config.AccessToken == "" {
		return fmt.Errorf(errMissingAccessToken, c.EnvPrefix())
	}
	return nil
}

// Save persists the current configuration through the underlying store.
func (c *Manager) Save() error {
	return c.configStore.Write(c.Config)
}

// ShowConfig serializes the current configuration to a YAML string.
// The access token is masked.
func (c *Manager) ShowConfig() (string, error) {
	shown := c.Config
	if shown.AccessToken != "" {
		shown.AccessToken = maskedValue
	}

	data, err := yaml.Marshal(shown)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func replaceByConfigFile(defaultConfig, userConfig Config) Config {
	t := reflect.TypeOf(defaultConfig)
	vDefault := reflect.ValueOf(&defaultConfig).Elem()
	vUser := reflect.ValueOf(userConfig)

	for i := 0; i < t.NumField(); i++ {
		defaultField := vDefault.Field(i)
		userField := vUser.Field(i)

		switch defaultField.Kind() {
		case reflect.String:
			if userStr := userField.String(); userStr != "" {
				defaultField.SetString(userStr)
			}
		case reflect.Bool:
			defaultField.SetBool(userField.Bool())
		case reflect.Slice:
			if userField.Len() > 0 {
				defaultField.Set(userField)
			}
		}
	}

	return defaultConfig
}

func replaceByEnvironment(configuration Config) Config {
	t := reflect.TypeOf(configuration)
	v := reflect.ValueOf(&configuration).Elem()

	prefix := strings.ToUpper(configuration.Name) + "_"
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("yaml")
		if tag == "name" {
			continue
		}

		if value := os.Getenv(prefix + strings.ToUpper(tag)); value != "" {
			field := v.Field(i)

			switch field.Kind() {
			case reflect.String:
				field.SetString(value)
			case reflect.Bool:
				boolValue, _ := strconv.ParseBool(value)
				field.SetBool(boolValue)
			case reflect.Slice:
				field.Set(reflect.ValueOf(splitList(value)))
			}
		}
	}

	return configuration
}

func splitList(value string) []string {
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
