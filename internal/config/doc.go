// Package config 负责加载日程助手的运行配置：YAML/JSON 文件、CALENDAR_ 前缀的环境变量覆盖以及默认值补全。
package config
