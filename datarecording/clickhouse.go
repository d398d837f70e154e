package datarecording

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseScheme prefixes the targets that name a ClickHouse server rather
// than an SQLite file.
const ClickHouseScheme = "clickhouse://"

// Open creates a DataRecorder for the target. A target that starts with
// ClickHouseScheme is a ClickHouse DSN; anything else is an SQLite path as
// accepted by New.
func Open(target string, logger *log.Logger) (DataRecorder, error) {
	if strings.HasPrefix(target, ClickHouseScheme) {
		return NewClickHouseRecorder(target, logger)
	}

	return New(target, logger)
}

// clickHouseRecorder writes the entries into a ClickHouse database with
// batched inserts.
type clickHouseRecorder struct {
	conn clickhouse.Conn

	tables     map[string]*table
	tableOrder []string
	batchSize  int
	entryCount int
	closed     bool
}

// NewClickHouseRecorder connects to the ClickHouse server named by the DSN,
// for example clickhouse://localhost:9000/vmsim?username=default.
func NewClickHouseRecorder(dsn string, logger *log.Logger) (DataRecorder, error) {
	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}

	err = conn.Ping(context.Background())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	if logger != nil {
		logger.Printf("recording into clickhouse database %s",
			options.Auth.Database)
	}

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

// clickHouseType maps a Go field kind to the ClickHouse column type.
func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("kind %s has no clickhouse type", kind))
	}
}

// clickHouseCreateTable returns the statement that creates a table for
// entries shaped like sampleEntry.
func clickHouseCreateTable(tableName string, sampleEntry any) string {
	t := reflect.TypeOf(sampleEntry)

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		columns = append(columns, f.Name+" "+clickHouseType(f.Type.Kind()))
	}

	return "CREATE TABLE IF NOT EXISTS " + tableName + " (\n\t" +
		strings.Join(columns, ",\n\t") +
		"\n) ENGINE = MergeTree()\nORDER BY tuple()"
}

// clickHouseRow widens int and uint values, which the driver only accepts
// with an explicit size.
func clickHouseRow(entry any) []any {
	values := structs.Values(entry)

	for i, v := range values {
		switch v := v.(type) {
		case int:
			values[i] = int64(v)
		case uint:
			values[i] = uint64(v)
		}
	}

	return values
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	query := clickHouseCreateTable(tableName, sampleEntry)

	err = r.conn.Exec(context.Background(), query)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
	r.tableOrder = append(r.tableOrder, tableName)
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) {
	table, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	table.entries = append(table.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.Flush()
	}
}

func (r *clickHouseRecorder) ListTables() []string {
	tables := make([]string, len(r.tableOrder))
	copy(tables, r.tableOrder)

	return tables
}

func (r *clickHouseRecorder) Flush() {
	if r.entryCount == 0 || r.closed {
		return
	}

	ctx := context.Background()

	for _, tableName := range r.tableOrder {
		table := r.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx, "INSERT INTO "+tableName)
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch for %s: %w",
				tableName, err))
		}

		for _, entry := range table.entries {
			err = batch.Append(clickHouseRow(entry)...)
			if err != nil {
				panic(fmt.Errorf("failed to append to %s: %w", tableName, err))
			}
		}

		err = batch.Send()
		if err != nil {
			panic(fmt.Errorf("failed to send batch to %s: %w", tableName, err))
		}

		table.entries = nil
	}

	r.entryCount = 0
}

func (r *clickHouseRecorder) Close() error {
	if r.closed {
		return nil
	}

	r.Flush()
	r.closed = true

	return r.conn.Close()
}
