package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/companymatch/data/db/companies.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/companymatch/data/indices"
	}
	if cfg.Match.IndexName == "" {
		cfg.Match.IndexName = "companies"
	}
	if cfg.Match.BatchConcurrency == 0 {
		cfg.Match.BatchConcurrency = 32
	}
	if cfg.Match.MaxBatchSize == 0 {
		cfg.Match.MaxBatchSize = 1000
	}
	if cfg.Dataset.Extensions == nil {
		cfg.Dataset.Extensions = []string{".csv", ".xlsx"}
	}
	if cfg.Dataset.ChunkSize == 0 {
		cfg.Dataset.ChunkSize = 5000
	}
}
