package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint describes a server backend. Password comes from the secret store.
type Endpoint struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	SSLMode  string `json:"sslMode"`
}

// PostgresDSN builds a lib/pq keyword/value connection string.
func PostgresDSN(e Endpoint, password string) string {
	port := e.Port
	if port == 0 {
		port = 5432
	}
	sslMode := e.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		e.Host, port, e.Username, password, e.Database, sslMode,
	)
}

// MySQLDSN builds a go-sql-driver DSN with time parsing enabled.
func MySQLDSN(e Endpoint, password string) string {
	port := e.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		e.Username, password, e.Host, port, e.Database,
	)
	if e.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

// MongoURI builds a connection URI. A Host that is already a mongodb:// or
// mongodb+srv:// URI is used as is, with <password> placeholders filled in.
func MongoURI(e Endpoint, password string) string {
	if strings.HasPrefix(e.Host, "mongodb+srv://") || strings.HasPrefix(e.Host, "mongodb://") {
		uri := e.Host
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(password))
		}
		return uri
	}

	port := e.Port
	if port == 0 {
		port = 27017
	}
	if e.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d",
			url.QueryEscape(e.Username), url.QueryEscape(password), e.Host, port)
	}
	return fmt.Sprintf("mongodb://%s:%d", e.Host, port)
}

// redact masks password in s for logging.
func redact(s, password string) string {
	if password == "" {
		return s
	}
	s = strings.ReplaceAll(s, url.QueryEscape(password), "***")
	return strings.ReplaceAll(s, password, "***")
}
