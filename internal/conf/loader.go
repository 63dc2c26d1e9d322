package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load 加载并校验配置文件
// 缺失 server/data/billing/log 任一段的配置在这里直接报错，
// 不留到运行期再暴露
func Load(path string) (*Bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var c Bootstrap
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &c, nil
}
