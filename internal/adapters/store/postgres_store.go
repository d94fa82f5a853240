package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// PostgresStore writes one row per verified run. Inserts are idempotent
// via the run_id unique key, so a retried append never duplicates.
type PostgresStore struct {
	db        *sql.DB
	tableName string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, tableName: table}
}

func (p *PostgresStore) Name() string { return "postgres" }

func (p *PostgresStore) AppendRun(r *domain.VerifiedRun) error {
	query := fmt.Sprintf(`INSERT INTO %s (run_id, completed_at, device_id, seq, temperature, humidity, light, device_ts, device_encrypt_ms, gateway_pre_ms, cloud_decrypt_ms, verify_ms) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) ON CONFLICT (run_id) DO NOTHING`, p.tableName)

	_, err := p.db.Exec(query,
		r.RunID,
		r.CompletedAt,
		r.Record.DeviceID,
		r.Record.Seq,
		r.Record.Temperature,
		r.Record.Humidity,
		r.Record.Light,
		r.Record.DeviceTS,
		durationMS(r.Timings.DeviceEncrypt),
		durationMS(r.Timings.GatewayPRE),
		durationMS(r.Timings.CloudDecrypt),
		durationMS(r.Timings.Verify),
	)
	return err
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

var _ ports.RunStore = (*PostgresStore)(nil)
