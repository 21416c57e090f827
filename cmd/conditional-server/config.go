package main

import (
	"os"

	conditional "github.com/always-cache/conditional"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Rules conditional.Rules `yaml:"rules"`
}

func getConfig(filename string) (Config, error) {
	var config Config
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}
