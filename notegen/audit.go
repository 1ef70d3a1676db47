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


package notegen

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditLog appends every model interaction of one pipeline run to a
// single file, sequentially numbered. It is the only way to diagnose
// JSON-parsing failures after the fact, so entries are flushed on every
// write, a cancelled run still leaves its partial trail.
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
	seq  int
}

// NewAuditLog opens a per-run audit file under dir. The file name
// carries the run start time.
func NewAuditLog(dir string) (*AuditLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audit dir: %w", err)
	}
	name := fmt.Sprintf("notegen_%s.log", time.Now().Format("20060102_150405"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &AuditLog{file: file}, nil
}

// Record appends one numbered entry with the prompt, the raw model
// response and the text extracted from it. Errors writing the audit
// trail never fail the pipeline.
func (a *AuditLog) Record(label, prompt, response, extracted string) {
	if a == nil || a.file == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	fmt.Fprintf(a.file,
		"===== entry %d [%s] %s =====\n--- prompt ---\n%s\n--- response ---\n%s\n--- extracted ---\n%s\n\n",
		a.seq, label, time.Now().Format(time.RFC3339), prompt, response, extracted)
	a.file.Sync()
}

// RecordError appends a numbered failure entry.
func (a *AuditLog) RecordError(label, prompt string, err error) {
	if a == nil || a.file == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.seq++
	fmt.Fprintf(a.file,
		"===== entry %d [%s] %s =====\n--- prompt ---\n%s\n--- error ---\n%v\n\n",
		a.seq, label, time.Now().Format(time.RFC3339), prompt, err)
	a.file.Sync()
}

// Path returns the audit file location.
func (a *AuditLog) Path() string {
	if a == nil || a.file == nil {
		return ""
	}
	return a.file.Name()
}

// Close closes the underlying file.
func (a *AuditLog) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	return a.file.Close()
}
