/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(context.Background(), &Config{Level: "warn", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = New(context.Background(), &Config{Level: "loud"})
	require.Error(t, err)

	l, err = New(context.Background(), &Config{Level: "error", Debug: true})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	l := Wrap(zerolog.New(&buf)).WithComponent("registry")
	l.Info().Int64("asset_id", 7).Msg("merged")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "registry", entry["component"])
	assert.Equal(t, "merged", entry["message"])
	assert.InDelta(t, 7, entry["asset_id"], 0)
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer

	l := Wrap(zerolog.New(&buf))
	l.SetLevel(zerolog.ErrorLevel)
	l.Info().Msg("dropped")

	assert.Zero(t, buf.Len())

	l.Error().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewTestLogger_Discards(t *testing.T) {
	l := NewTestLogger()
	l.Error().Msg("nothing")
	assert.NotNil(t, l.WithComponent("x"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer

	mw := NewMultiWriter(&a, &b)
	n, err := mw.Write([]byte("line\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "line\n", a.String())
	assert.Equal(t, "line\n", b.String())

	_, err = NewMultiWriter(&a, failingWriter{}).Write([]byte("x"))
	require.Error(t, err)
}
