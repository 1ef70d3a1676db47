// Copyright 2026 Lectern AI
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/lectern-ai/lectern/core"
)

// MarshalID serializes an ID to 8 bytes, big-endian so lexicographic
// key ordering matches numeric ordering.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: id needs 8 bytes, got %d", ErrSerializationFailed, len(data))
	}
	return core.ID(binary.BigEndian.Uint64(data)), nil
}

// MarshalChunk serializes a ContentUnit to bytes.
func MarshalChunk(chunk *core.ContentUnit) ([]byte, error) {
	return marshal(chunk)
}

// UnmarshalChunk deserializes a ContentUnit from bytes.
func UnmarshalChunk(data []byte) (*core.ContentUnit, error) {
	var chunk core.ContentUnit
	if err := unmarshal(data, &chunk); err != nil {
		return nil, err
	}
	return &chunk, nil
}

// MarshalTopic serializes a Topic to bytes.
func MarshalTopic(topic *core.Topic) ([]byte, error) {
	return marshal(topic)
}

// UnmarshalTopic deserializes a Topic from bytes.
func UnmarshalTopic(data []byte) (*core.Topic, error) {
	var topic core.Topic
	if err := unmarshal(data, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// MarshalNote serializes a Note to bytes.
func MarshalNote(note *core.Note) ([]byte, error) {
	return marshal(note)
}

// UnmarshalNote deserializes a Note from bytes.
func UnmarshalNote(data []byte) (*core.Note, error) {
	var note core.Note
	if err := unmarshal(data, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// MarshalSummary serializes a Summary to bytes.
func MarshalSummary(summary *core.Summary) ([]byte, error) {
	return marshal(summary)
}

// UnmarshalSummary deserializes a Summary from bytes.
func UnmarshalSummary(data []byte) (*core.Summary, error) {
	var summary core.Summary
	if err := unmarshal(data, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return data, nil
}

func unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrSerializationFailed, err)
	}
	return nil
}
