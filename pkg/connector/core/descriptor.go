// Package core holds the types shared by the connector, its registry and the
// source packages.
package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/dataconnector/pkg/compression"
)

// SourceKind identifies which loader reads a source.
type SourceKind string

const (
	SourceKindCSV        SourceKind = "csv"
	SourceKindExcel      SourceKind = "excel"
	SourceKindJSON       SourceKind = "json"
	SourceKindSQLite     SourceKind = "sqlite"
	SourceKindMySQL      SourceKind = "mysql"
	SourceKindPostgreSQL SourceKind = "postgresql"
	SourceKindBigQuery   SourceKind = "bigquery"
	SourceKindSnowflake  SourceKind = "snowflake"
)

// FileKinds are the kinds a path alone can be read as.
var FileKinds = []SourceKind{SourceKindCSV, SourceKindExcel, SourceKindJSON, SourceKindSQLite}

// IsFile reports whether the kind is read from a local file.
func (k SourceKind) IsFile() bool {
	for _, f := range FileKinds {
		if f == k {
			return true
		}
	}
	return false
}

// Descriptor describes one source being read. It is built per call for log
// fields and error details and is never persisted.
type Descriptor struct {
	Kind            SourceKind
	Path            string
	Sheet           string
	Host            string
	Port            int
	Database        string
	Username        string
	Password        string
	Table           string
	Query           string
	ProjectID       string
	TableID         string
	CredentialsPath string
	Account         string
	Warehouse       string
}

// Target returns the table, table id or query the descriptor points at.
func (d Descriptor) Target() string {
	switch {
	case d.Query != "":
		return "query"
	case d.Table != "":
		return d.Table
	case d.TableID != "":
		return d.TableID
	case d.Sheet != "":
		return d.Sheet
	}
	return ""
}

// String renders the descriptor without its password.
func (d Descriptor) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	b.WriteString("://")
	switch {
	case d.Path != "":
		b.WriteString(d.Path)
	case d.Account != "":
		if d.Username != "" {
			b.WriteString(d.Username + "@")
		}
		b.WriteString(d.Account)
	case d.Host != "":
		if d.Username != "" {
			b.WriteString(d.Username + "@")
		}
		b.WriteString(d.Host)
		if d.Port != 0 {
			fmt.Fprintf(&b, ":%d", d.Port)
		}
	case d.ProjectID != "":
		b.WriteString(d.ProjectID)
	}
	if d.Database != "" {
		b.WriteString("/" + d.Database)
	}
	if t := d.Target(); t != "" {
		b.WriteString("#" + t)
	}
	return b.String()
}

// MarshalLogObject lets a descriptor be logged with zap.Object. The password
// is never written.
func (d Descriptor) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("kind", string(d.Kind))
	addIf := func(key, val string) {
		if val != "" {
			enc.AddString(key, val)
		}
	}
	addIf("path", d.Path)
	addIf("sheet", d.Sheet)
	addIf("host", d.Host)
	if d.Port != 0 {
		enc.AddInt("port", d.Port)
	}
	addIf("database", d.Database)
	addIf("username", d.Username)
	addIf("table", d.Table)
	addIf("project_id", d.ProjectID)
	addIf("table_id", d.TableID)
	addIf("account", d.Account)
	addIf("warehouse", d.Warehouse)
	if d.Query != "" {
		enc.AddBool("has_query", true)
	}
	if d.CredentialsPath != "" {
		enc.AddBool("explicit_credentials", true)
	}
	return nil
}

// Field returns the descriptor as a zap field.
func (d Descriptor) Field() zap.Field {
	return zap.Object("source", d)
}

// StemName returns the file name of path without directories, compression
// suffix or extension. Loaders use it to name file-backed tables.
func StemName(path string) string {
	base := filepath.Base(compression.Strip(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
