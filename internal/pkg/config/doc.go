// Package config reads tunables from a file or an in-memory document.
//
// Code depends on the Config interface; Viper is the only implementation.
package config
