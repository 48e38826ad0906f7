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

package writers

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/raceclean/core"
)

// Mock writer shared by the text sink tests
type mockWriteCloser struct {
	*strings.Builder
	closed    bool
	failWrite bool
	failClose bool
	mu        sync.Mutex
}

func (m *mockWriteCloser) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return 0, io.ErrUnexpectedEOF
	}
	return m.Builder.Write(p)
}

func (m *mockWriteCloser) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.failClose {
		return io.ErrUnexpectedEOF
	}
	return nil
}

func (m *mockWriteCloser) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Builder.String()
}

func (m *mockWriteCloser) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func newMockWriteCloser() *mockWriteCloser {
	return &mockWriteCloser{Builder: &strings.Builder{}}
}

var raceHeaders = []string{"GRAND PRIX", "DATE", "WINNER", "LAPS", "TIME"}

func raceRecords() []core.Record {
	return []core.Record{
		{"GRAND PRIX": "Monaco", "DATE": time.Date(1995, 5, 28, 0, 0, 0, 0, time.UTC), "WINNER": "Michael Schumacher", "LAPS": 78, "TIME": "1:53:11.258"},
		{"GRAND PRIX": "Monza", "DATE": nil, "WINNER": "Johnny Herbert", "LAPS": 53, "TIME": "1:18:27.916"},
	}
}

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_HeaderOrderAndFormatting(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock, WithHeaders(raceHeaders))
	require.NoError(t, err)

	ctx := context.Background()
	for _, r := range raceRecords() {
		require.NoError(t, writer.Write(ctx, r))
	}
	require.NoError(t, writer.Close())
	assert.True(t, mock.IsClosed())

	rows := readCSV(t, mock.String())
	require.Len(t, rows, 3)
	assert.Equal(t, raceHeaders, rows[0])
	assert.Equal(t, []string{"Monaco", "1995-05-28", "Michael Schumacher", "78", "1:53:11.258"}, rows[1])
	assert.Equal(t, []string{"Monza", "", "Johnny Herbert", "53", "1:18:27.916"}, rows[2])

	stats := writer.Stats()
	assert.Equal(t, int64(2), stats.RecordsWritten)
	assert.Equal(t, int64(1), stats.NullValueCounts["DATE"])
}

func TestCSVWriter_SortedHeadersWithoutOption(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock)
	require.NoError(t, err)

	require.NoError(t, writer.Write(context.Background(), core.Record{"b": 1, "a": math.NaN()}))
	require.NoError(t, writer.Close())

	rows := readCSV(t, mock.String())
	assert.Equal(t, []string{"a", "b"}, rows[0])
	assert.Equal(t, []string{"", "1"}, rows[1])
}

func TestCSVWriter_EmptyTableStillWritesHeader(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock, WithHeaders(raceHeaders))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	assert.Equal(t, [][]string{raceHeaders}, readCSV(t, mock.String()))
}

func TestCSVWriter_DelimiterAndNoHeader(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock,
		WithComma(';'),
		WithWriteHeader(false),
		WithHeaders([]string{"GRAND PRIX", "LAPS"}),
	)
	require.NoError(t, err)

	require.NoError(t, writer.Write(context.Background(), core.Record{"GRAND PRIX": "Spa", "LAPS": 44}))
	require.NoError(t, writer.Close())
	assert.Equal(t, "Spa;44\n", mock.String())
}

func TestCSVWriter_BatchedWrites(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock, WithCSVBatchSize(2), WithHeaders([]string{"LAPS"}))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, writer.Write(ctx, core.Record{"LAPS": i}))
	}
	require.NoError(t, writer.Close())

	assert.Len(t, readCSV(t, mock.String()), 6)
	assert.Equal(t, int64(3), writer.Stats().FlushCount)
}

func TestCSVWriter_ErrorHandling(t *testing.T) {
	t.Run("flush_failure_sets_error_state", func(t *testing.T) {
		mock := newMockWriteCloser()
		writer, err := NewCSVWriter(mock, WithCSVBatchSize(1))
		require.NoError(t, err)

		mock.failWrite = true
		err = writer.Write(context.Background(), core.Record{"LAPS": 1})
		var csvErr *CSVWriterError
		require.ErrorAs(t, err, &csvErr)

		mock.failWrite = false
		err = writer.Write(context.Background(), core.Record{"LAPS": 2})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error state")
	})

	t.Run("close_error", func(t *testing.T) {
		mock := newMockWriteCloser()
		mock.failClose = true
		writer, err := NewCSVWriter(mock)
		require.NoError(t, err)

		require.NoError(t, writer.Write(context.Background(), core.Record{"LAPS": 1}))
		assert.Error(t, writer.Close())
	})
}
