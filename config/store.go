package config

import (
	"github.com/kardolus/jssdk/internal"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

const (
	defaultName         = "jssdk"
	defaultURL          = "https://api.weixin.qq.com"
	defaultTicketPath   = "/cgi-bin/ticket/getticket"
	defaultCacheBackend = "file"
	defaultUserAgent    = "jssdk"
	defaultListenAddr   = ":8080"
	configFileName      = "config.yaml"
)

//go:generate mockgen -destination=configmocks_test.go -package=config_test github.com/kardolus/jssdk/config Store
type Store interface {
	Read() (Config, error)
	ReadDefaults() Config
	Write(Config) error
}

// Ensure FileIO implements the Store interface
var _ Store = &FileIO{}

type FileIO struct {
	configFilePath string
	cacheDir       string
}

func New() *FileIO {
	configHome, _ := internal.GetConfigHome()
	cacheHome, _ := internal.GetCacheHome()

	return &FileIO{
		configFilePath: filepath.Join(configHome, configFileName),
		cacheDir:       cacheHome,
	}
}

func (f *FileIO) WithConfigPath(configFilePath string) *FileIO {
	f.configFilePath = configFilePath
	return f
}

func (f *FileIO) WithCacheDir(cacheDir string) *FileIO {
	f.cacheDir = cacheDir
	return f
}

func (f *FileIO) Read() (Config, error) {
	return parseFile(f.configFilePath)
}

func (f *FileIO) ReadDefaults() Config {
	return Config{
		Name:         defaultName,
		URL:          defaultURL,
		TicketPath:   defaultTicketPath,
		CacheBackend: defaultCacheBackend,
		CacheDir:     f.cacheDir,
		UserAgent:    defaultUserAgent,
		ListenAddr:   defaultListenAddr,
	}
}

func (f *FileIO) Write(config Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.configFilePath), 0o700); err != nil {
		return err
	}

	// the file may hold an access token
	return os.WriteFile(f.configFilePath, data, 0o600)
}

func parseFile(fileName string) (Config, error) {
	var result Config

	buf, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(buf, &result); err != nil {
		return Config{}, err
	}

	return result, nil
}
