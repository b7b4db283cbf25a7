package config

type Config struct {
	Name          string   `yaml:"name"`
	AppID         string   `yaml:"app_id"`
	AccessToken   string   `yaml:"access_token"`
	URL           string   `yaml:"url"`
	TicketPath    string   `yaml:"ticket_path"`
	PageURL       string   `yaml:"page_url"`
	CacheBackend  string   `yaml:"cache_backend"`
	CacheDir      string   `yaml:"cache_dir"`
	UserAgent     string   `yaml:"user_agent"`
	SkipTLSVerify bool     `yaml:"skip_tls_verify"`
	Debug         bool     `yaml:"debug"`
	JSAPIList     []string `yaml:"js_api_list"`
	ListenAddr    string   `yaml:"listen_addr"`
	Metrics       bool     `yaml:"metrics"`
}
