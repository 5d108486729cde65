// Package config provides PostgreSQL database configuration for BookStore testing.
//
// DSNs are read through viper from BOOKSTORE_* environment variables, optionally
// loaded from a .env file, and fall back to the local docker-compose databases.
// Factory functions create connections for every supported adapter type
// (pgx.Pool, sql.DB, sqlx.DB) in single-node and primary/replica topologies.
package config
