package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/cardiorisk/internal/environment"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/orchestrator"
	"github.com/programme-lv/cardiorisk/internal/trainer"
	"github.com/programme-lv/cardiorisk/internal/vitals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRootOk(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, healthOk, ensureRootOk(exchange.NewLayout(dir)).health)
	assert.Equal(t, healthError, ensureRootOk(exchange.NewLayout(filepath.Join(dir, "nope"))).health)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Equal(t, healthError, ensureRootOk(exchange.NewLayout(file)).health)
}

func TestEnsureTableOk(t *testing.T) {
	assert.Equal(t, healthOk, ensureTableOk(vitals.DefaultTable).health)

	broken := vitals.DefaultTable
	broken.Ranges[vitals.Age] = vitals.Range{Min: 10, Max: 10}
	assert.Equal(t, healthError, ensureTableOk(broken).health)
}

func TestEnsureClientOk(t *testing.T) {
	dir := t.TempDir()
	o := orchestrator.New(exchange.NewLayout(dir), "client.sh", vitals.DefaultTable, nil)
	assert.Equal(t, healthError, ensureClientOk(o).health)

	path := filepath.Join(dir, "client.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0644))
	assert.Equal(t, healthWarn, ensureClientOk(o).health)

	require.NoError(t, os.Chmod(path, 0755))
	assert.Equal(t, healthOk, ensureClientOk(o).health)
}

func TestEnsureModelAndManifest(t *testing.T) {
	l := exchange.NewLayout(t.TempDir())
	assert.Equal(t, healthWarn, ensureModelOk(l).health)
	assert.Equal(t, healthWarn, ensureManifestOk(l, vitals.DefaultTable).health)

	require.NoError(t, exchange.WriteModel(l, exchange.Model{Weights: [4]float64{0.1, 0.2, 0.3, 0.4}, Bias: 0.5}))
	row := ensureModelOk(l)
	assert.Equal(t, healthOk, row.health)
	assert.Contains(t, row.message, "bias=0.500000")

	require.NoError(t, trainer.WriteManifest(l.Root, &trainer.Manifest{TableVersion: vitals.DefaultTable.Version}))
	assert.Equal(t, healthOk, ensureManifestOk(l, vitals.DefaultTable).health)

	require.NoError(t, trainer.WriteManifest(l.Root, &trainer.Manifest{TableVersion: "other"}))
	row = ensureManifestOk(l, vitals.DefaultTable)
	assert.Equal(t, healthWarn, row.health)
	assert.Contains(t, row.message, `"other"`)
}

func TestEnsureDatasetOk(t *testing.T) {
	cfg := environment.Defaults()
	cfg.Root = t.TempDir()
	cfg.Dataset = "heart.csv"
	assert.Equal(t, healthWarn, ensureDatasetOk(cfg).health)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "heart.csv"), []byte("age\n"), 0644))
	assert.Equal(t, healthOk, ensureDatasetOk(cfg).health)

	cfg.Dataset = "https://bucket.s3.eu-central-1.amazonaws.com/heart.csv.zst"
	row := ensureDatasetOk(cfg)
	assert.Equal(t, healthOk, row.health)
	assert.Contains(t, row.message, "remote")
}

func TestEnsureSharedOk(t *testing.T) {
	l := exchange.NewLayout(t.TempDir())
	assert.Equal(t, healthWarn, ensureSharedOk(l).health)

	require.NoError(t, os.MkdirAll(l.SharedPath(), 0755))
	require.NoError(t, os.WriteFile(l.Path(exchange.RequestSentinel), nil, 0644))
	row := ensureSharedOk(l)
	assert.Equal(t, healthOk, row.health)
	assert.Contains(t, row.message, string(exchange.ServerRequestDetected))
	assert.Contains(t, row.message, "1 files")
}
