// Package config loads stepviz.yaml and decodes loosely typed parameter records.
package config
