// Package store persists custodial wallet rows in MySQL. The chain's
// native token maps to the generic "users" table; every other token gets
// its own "<token>_users" table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/AlexZinkM/tip-wallet/internal/model"
)

const duplicateEntryErr = 1062

var tokenNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// WalletStore is the persistence half of the wallet directory.
type WalletStore struct {
	db          *sql.DB
	nativeToken string
}

// Open connects to MySQL and configures the connection pool.
func Open(ctx context.Context, dsn, nativeToken string) (*WalletStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	return &WalletStore{db: db, nativeToken: strings.ToLower(nativeToken)}, nil
}

// Close releases the connection pool.
func (s *WalletStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the wallet table for each configured token if it
// does not exist. The unique key on (username, platform) is what makes
// wallet creation safe under concurrency.
func (s *WalletStore) EnsureSchema(ctx context.Context, tokens []string) error {
	for _, token := range tokens {
		table, err := s.tableFor(token)
		if err != nil {
			return err
		}
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(190) NOT NULL,
			platform VARCHAR(32) NOT NULL,
			address VARCHAR(64) NOT NULL,
			seed TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY identity_idx (username, platform)
		)`, table)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// tableFor maps a token to its wallet table name. Token symbols come from
// the validated network configuration, but the name is still restricted to
// [a-z0-9_] because it is interpolated into SQL.
func (s *WalletStore) tableFor(token string) (string, error) {
	token = strings.ToLower(token)
	if !tokenNamePattern.MatchString(token) {
		return "", fmt.Errorf("%w: invalid token symbol %q", model.ErrUnknownToken, token)
	}
	if token == s.nativeToken {
		return "users", nil
	}
	return token + "_users", nil
}

// Find looks up a wallet by identity. The username is tried as given and
// then lowercased; nil is returned when neither form matches.
func (s *WalletStore) Find(ctx context.Context, username, platform, token string) (*model.Wallet, error) {
	table, err := s.tableFor(token)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT username, platform, address, seed FROM %s WHERE username = ? AND platform = ?", table)
	for _, name := range []string{username, strings.ToLower(username)} {
		w := &model.Wallet{Token: strings.ToLower(token)}
		err := s.db.QueryRowContext(ctx, query, name, platform).
			Scan(&w.Username, &w.Platform, &w.Address, &w.EncryptedSeed)
		switch {
		case err == nil:
			return w, nil
		case errors.Is(err, sql.ErrNoRows):
			continue
		default:
			return nil, fmt.Errorf("failed to query %s: %w", table, err)
		}
	}
	return nil, nil
}

// ReencryptSeeds rewrites the seed column of every row in a token's table
// through rotate. Rows are updated one by one; on the first rotate or
// update error the walk stops and the number of rows already rewritten is
// returned, so a partially rotated table can be finished with a rerun.
func (s *WalletStore) ReencryptSeeds(ctx context.Context, token string, rotate func(encrypted string) (string, error)) (int, error) {
	table, err := s.tableFor(token)
	if err != nil {
		return 0, err
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT id, username, seed FROM %s", table))
	if err != nil {
		return 0, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	type row struct {
		id       int64
		username string
		seed     string
	}
	var pending []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.username, &r.seed); err != nil {
			return 0, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", table, err)
	}

	update := fmt.Sprintf("UPDATE %s SET seed = ? WHERE id = ?", table)
	done := 0
	for _, r := range pending {
		rotated, err := rotate(r.seed)
		if err != nil {
			return done, fmt.Errorf("failed to rotate seed for %q: %w", r.username, err)
		}
		if _, err := s.db.ExecContext(ctx, update, rotated, r.id); err != nil {
			return done, fmt.Errorf("failed to update %s row %d: %w", table, r.id, err)
		}
		done++
	}
	return done, nil
}

// Insert persists a new wallet row. Creation is a single atomic
// insert-if-absent: when a concurrent writer got there first, the unique
// key rejects this insert and the winning row is returned instead.
func (s *WalletStore) Insert(ctx context.Context, w model.Wallet) (*model.Wallet, error) {
	table, err := s.tableFor(w.Token)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("INSERT INTO %s (username, platform, address, seed) VALUES (?, ?, ?, ?)", table)
	_, err = s.db.ExecContext(ctx, stmt, w.Username, w.Platform, w.Address, w.EncryptedSeed)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErr {
			existing, findErr := s.Find(ctx, w.Username, w.Platform, w.Token)
			if findErr != nil {
				return nil, fmt.Errorf("%w: %v", model.ErrWalletCreation, findErr)
			}
			if existing == nil {
				return nil, fmt.Errorf("%w: duplicate row disappeared", model.ErrWalletCreation)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrWalletCreation, err)
	}
	return &w, nil
}
