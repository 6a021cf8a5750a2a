package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN_EscapesCredentials(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "ticket", Password: "p@ss/word", DBName: "campus_ticket"}

	assert.Equal(t, "postgres://ticket:p%40ss%2Fword@db:5432/campus_ticket?sslmode=disable", cfg.DSN())
}

func TestSchemaIsEmbedded(t *testing.T) {
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS event_tickets")
	assert.Contains(t, schema, "UNIQUE (event_id, user_id)")
}
