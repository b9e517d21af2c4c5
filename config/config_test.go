package config_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvitoroc/gorules/config"
	"github.com/jvitoroc/gorules/eval"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, config.DefaultPath, cfg.Storage.Path)
	assert.False(t, cfg.Strict)
	assert.Equal(t, eval.DefaultCatalog, cfg.Catalog())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestWriteThenLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "gorules.yaml")

	cfg := config.Default()
	cfg.Strict = true
	cfg.Storage = config.Storage{Driver: config.DriverFile, Path: "data"}
	cfg.Attributes = append(cfg.Attributes, config.Attribute{Name: "score", Type: config.TypeFloat})

	require.NoError(t, cfg.Write(path))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestParse(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    func() *config.Config
		input   string
		wantErr string
	}{
		"empty document": {
			input: "",
			want:  config.Default,
		},
		"partial document keeps defaults": {
			input: "strict: true\n",
			want: func() *config.Config {
				cfg := config.Default()
				cfg.Strict = true
				return cfg
			},
		},
		"custom attributes replace defaults": {
			input: "attributes:\n  - name: score\n    type: float\n",
			want: func() *config.Config {
				cfg := config.Default()
				cfg.Attributes = []config.Attribute{{Name: "score", Type: config.TypeFloat}}
				return cfg
			},
		},
		"unknown field": {
			input:   "storage:\n  driver: sqlite\n  dsn: x\n",
			wantErr: "invalid config",
		},
		"unknown driver": {
			input:   "storage:\n  driver: postgres\n",
			wantErr: `unknown driver "postgres"`,
		},
		"empty path": {
			input:   "storage:\n  path: ''\n",
			wantErr: "storage.path",
		},
		"duplicate attribute": {
			input:   "attributes:\n  - {name: age, type: int}\n  - {name: age, type: float}\n",
			wantErr: `duplicate attribute "age"`,
		},
		"unknown type": {
			input:   "attributes:\n  - {name: active, type: bool}\n",
			wantErr: `unknown type "bool"`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := config.Parse(strings.NewReader(tc.input))
			if tc.wantErr != "" {
				require.ErrorIs(t, err, config.ErrInvalidConfig)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want(), got)
		})
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    any
		attr    config.Attribute
		input   string
		wantOK  bool
		wantErr bool
	}{
		"int": {
			attr:   config.Attribute{Name: "age", Type: config.TypeInt},
			input:  " 35 ",
			want:   int64(35),
			wantOK: true,
		},
		"negative int": {
			attr:   config.Attribute{Name: "age", Type: config.TypeInt},
			input:  "-3",
			want:   int64(-3),
			wantOK: true,
		},
		"int from float input": {
			attr:    config.Attribute{Name: "age", Type: config.TypeInt},
			input:   "35.5",
			wantErr: true,
		},
		"float": {
			attr:   config.Attribute{Name: "score", Type: config.TypeFloat},
			input:  "2.5",
			want:   2.5,
			wantOK: true,
		},
		"float rejects infinity": {
			attr:    config.Attribute{Name: "score", Type: config.TypeFloat},
			input:   "inf",
			wantErr: true,
		},
		"string": {
			attr:   config.Attribute{Name: "department", Type: config.TypeString},
			input:  "Sales",
			want:   "Sales",
			wantOK: true,
		},
		"empty input is not provided": {
			attr:  config.Attribute{Name: "age", Type: config.TypeInt},
			input: "   ",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok, err := tc.attr.ParseValue(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, config.ErrInvalidValue)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAttribute(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	a, ok := cfg.Attribute("salary")
	require.True(t, ok)
	assert.Equal(t, config.TypeInt, a.Type)

	_, ok = cfg.Attribute("bonus")
	assert.False(t, ok)
}
