// Package config loads typed configuration structs from environment
// variables, with optional .env file support via godotenv and parsing via
// caarlos0/env. Each struct type is parsed once per process and served from
// an in-memory cache afterwards; Reset clears the cache for tests.
package config
