package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/cuihairu/tabletop/internal/db"
	"github.com/cuihairu/tabletop/internal/validation"
	redis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

func fileExists(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

// ValidateTLS checks that cert and key are given together and exist.
func ValidateTLS(cert, key string) error {
	if cert == "" && key == "" {
		return nil
	}
	if err := fileExists(cert); err != nil {
		return fmt.Errorf("cert: %w", err)
	}
	if err := fileExists(key); err != nil {
		return fmt.Errorf("key: %w", err)
	}
	return nil
}

func ValidateAddr(addr string) error {
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

// ValidateCatalogConfig checks a catalog service config read by viper.
// strict also requires the optional broker and store settings to be usable.
func ValidateCatalogConfig(v *viper.Viper, strict bool) error {
	if strings.TrimSpace(v.GetString("name")) == "" {
		return fmt.Errorf("name: missing")
	}
	host := v.GetString("host")
	if host == "" {
		host = "0.0.0.0"
	}
	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port: %d out of range", port)
	}
	if err := ValidateAddr(net.JoinHostPort(host, strconv.Itoa(port))); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if err := ValidateTLS(v.GetString("certfile"), v.GetString("keyfile")); err != nil {
		return err
	}
	if err := validateStore(v, strict); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := validateEvents(v); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if n := v.GetInt("catalog.repairconcurrency"); n < 0 {
		return fmt.Errorf("catalog.repairconcurrency: %d is negative", n)
	}
	return nil
}

func validateStore(v *viper.Viper, strict bool) error {
	switch driver := strings.ToLower(v.GetString("store.driver")); driver {
	case "", "memory":
		return nil
	case "gorm":
		dsn := v.GetString("store.datasource")
		if dsn == "" && strict {
			return errors.New("datasource missing")
		}
		if strings.HasPrefix(dsn, "mysql://") {
			return errors.New("only postgres and sqlite datasources are supported")
		}
		if dsn != "" && !db.IsPostgres(dsn) && strings.Contains(dsn, "://") &&
			!strings.HasPrefix(dsn, "sqlite:///") && !strings.HasPrefix(dsn, "sqlite-pure:///") {
			return fmt.Errorf("unrecognised datasource %q", dsn)
		}
		return nil
	case "redis":
		url := v.GetString("store.redisurl")
		if url == "" {
			if strict {
				return errors.New("redisurl missing")
			}
			return nil
		}
		_, err := redis.ParseURL(url)
		return err
	default:
		return fmt.Errorf("unknown driver %q", driver)
	}
}

func validateEvents(v *viper.Viper) error {
	switch driver := strings.ToLower(v.GetString("events.driver")); driver {
	case "", "noop", "file":
		return nil
	case "redis":
		if url := v.GetString("events.redisurl"); url != "" {
			_, err := redis.ParseURL(url)
			return err
		}
		return nil
	case "kafka":
		if len(v.GetStringSlice("events.kafkabrokers")) == 0 {
			return errors.New("kafkabrokers missing")
		}
		return nil
	default:
		return fmt.Errorf("unknown driver %q", driver)
	}
}

// ValidateBoardGameFile checks every record in a JSON file against the board
// game schema. The file may hold one record, an array of records, or a list
// response ({"board_games": [...]}). It returns the number of records checked.
func ValidateBoardGameFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	records, err := splitRecords(b)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	var errs []error
	for i, rec := range records {
		if err := validation.ValidateBoardGame(rec); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return len(records), errors.Join(errs...)
}

func splitRecords(b []byte) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal(b, &arr); err != nil {
			return nil, err
		}
		return arr, nil
	}
	var list struct {
		BoardGames []json.RawMessage `json:"board_games"`
	}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	if list.BoardGames != nil {
		return list.BoardGames, nil
	}
	return []json.RawMessage{json.RawMessage(b)}, nil
}
