package pricing

import (
	"fmt"

	"github.com/spf13/viper"
)

type rateFile struct {
	Rates []RateEntry `mapstructure:"rates"`
}

// LoadTable reads a rate table from a YAML, JSON or TOML file with a top
// level "rates" list. An empty path yields the built-in table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}

	var file rateFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	if len(file.Rates) == 0 {
		return nil, fmt.Errorf("rate table %s has no rates", path)
	}
	return NewTable(file.Rates)
}
