//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of RaceClean.
//
// RaceClean is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RaceClean is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RaceClean. If not, see https://www.gnu.org/licenses/.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/core"
	"github.com/aaronlmathis/raceclean/filter"
	"github.com/aaronlmathis/raceclean/readers"
	"github.com/aaronlmathis/raceclean/transform"
	"github.com/aaronlmathis/raceclean/writers"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

type memorySink struct {
	records  []core.Record
	flushed  bool
	closed   bool
	failOn   string
	closeErr error
}

func (m *memorySink) Write(ctx context.Context, record core.Record) error {
	if m.failOn != "" && record["GRAND PRIX"] == m.failOn {
		return errors.New("sink rejected " + m.failOn)
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memorySink) Flush() error {
	m.flushed = true
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return m.closeErr
}

func raceTable() *core.Table {
	return core.NewTable([]string{"GRAND PRIX", "WINNER", "LAPS"},
		core.Record{"GRAND PRIX": "Monaco", "WINNER": "Ayrton Senna", "LAPS": 78},
		core.Record{"GRAND PRIX": "Monza", "WINNER": nil, "LAPS": 53},
		core.Record{"GRAND PRIX": "Spa", "WINNER": "Michael Schumacher", "LAPS": "44"},
	)
}

func TestBuild_RequiresSourceAndSink(t *testing.T) {
	_, err := NewPipeline().To(&memorySink{}).Build()
	assert.Error(t, err)

	_, err = NewPipeline().From(readers.NewTableReader(raceTable())).Build()
	assert.Error(t, err)
}

func TestExecute_TableToCSV(t *testing.T) {
	table := raceTable()
	out := &bufferCloser{}
	sink, err := writers.NewCSVWriter(out, writers.WithHeaders([]string{"GRAND PRIX", "LAPS"}))
	require.NoError(t, err)

	p, err := NewPipeline().
		From(readers.NewTableReader(table)).
		Transform(transform.Select("GRAND PRIX", "LAPS")).
		To(sink).
		Build()
	require.NoError(t, err)

	stats, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.RecordsRead)
	assert.Equal(t, int64(3), stats.RecordsWritten)
	assert.True(t, out.closed)
	assert.Equal(t, "GRAND PRIX,LAPS\nMonaco,78\nMonza,53\nSpa,44\n", out.String())
}

// Transformers run before filters, whatever order they were added in.
func TestExecute_FiltersAndMaps(t *testing.T) {
	sink := &memorySink{}
	p, err := NewPipeline().
		From(readers.NewTableReader(raceTable())).
		Filter(filter.NotNull("WINNER")).
		Map(func(ctx context.Context, r core.Record) (core.Record, error) {
			if winner, ok := r["WINNER"].(string); ok {
				r["WINNER"] = strings.ToUpper(winner)
			}
			return r, nil
		}).
		To(sink).
		Build()
	require.NoError(t, err)

	stats, err := p.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.RecordsFiltered)
	require.Len(t, sink.records, 2)
	assert.Equal(t, "AYRTON SENNA", sink.records[0]["WINNER"])
	assert.True(t, sink.flushed)
	assert.True(t, sink.closed)
}

func TestExecute_FailFastStopsAtFirstError(t *testing.T) {
	sink := &memorySink{failOn: "Monza"}
	p, err := NewPipeline().From(readers.NewTableReader(raceTable())).To(sink).Build()
	require.NoError(t, err)

	stats, err := p.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Monza")
	assert.Equal(t, int64(1), stats.RecordsWritten)
	assert.False(t, sink.flushed)
	assert.True(t, sink.closed)
}

func TestExecute_SkipErrorsCallsHandler(t *testing.T) {
	sink := &memorySink{failOn: "Monza"}
	var seen []string
	p, err := NewPipeline().
		From(readers.NewTableReader(raceTable())).
		To(sink).
		WithErrorStrategy(core.SkipErrors).
		WithErrorHandler(core.ErrorHandlerFunc(func(ctx context.Context, r core.Record, err error) error {
			seen = append(seen, r["GRAND PRIX"].(string))
			return nil
		})).
		Build()
	require.NoError(t, err)

	stats, err := p.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Monza"}, seen)
	assert.Equal(t, int64(2), stats.RecordsWritten)
	assert.Equal(t, int64(1), stats.Errors)
}

func TestExecute_CollectErrorsReturnsAllFailures(t *testing.T) {
	sink := &memorySink{}
	p, err := NewPipeline().
		From(readers.NewTableReader(raceTable())).
		Transform(transform.CoerceInt("LAPS", 0)).
		Where(func(ctx context.Context, r core.Record) (bool, error) {
			if r["WINNER"] == nil {
				return false, errors.New("no winner for " + r["GRAND PRIX"].(string))
			}
			return true, nil
		}).
		To(sink).
		WithErrorStrategy(core.CollectErrors).
		Build()
	require.NoError(t, err)

	stats, err := p.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no winner for Monza")
	assert.Equal(t, int64(2), stats.RecordsWritten)
	assert.Equal(t, 44, sink.records[1]["LAPS"])
}

func TestExecute_ReportsCloseError(t *testing.T) {
	sink := &memorySink{closeErr: errors.New("disk full")}
	p, err := NewPipeline().From(readers.NewTableReader(raceTable())).To(sink).Build()
	require.NoError(t, err)

	_, err = p.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExecute_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := NewPipeline().From(readers.NewTableReader(raceTable())).To(&memorySink{}).Build()
	require.NoError(t, err)

	_, err = p.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
