// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package mdconv

import "sort"

const (
	// PrioritySpecific is for format-specific converters (PDF, DOCX, etc.).
	PrioritySpecific = 0.0
	// PriorityGeneric is for fallback converters (PlainText, HTML, ZIP).
	PriorityGeneric = 10.0
)

type registeredConverter struct {
	converter DocumentConverter
	priority  float64
	seq       int
	name      string
}

// converterRegistry keeps converters in probe order: lower priority value
// first, and within a priority band the most recently registered converter
// first, so user registrations shadow built-ins of equal priority.
type converterRegistry struct {
	entries []registeredConverter
	nextSeq int
}

func (r *converterRegistry) register(name string, c DocumentConverter, priority float64) {
	r.entries = append(r.entries, registeredConverter{
		converter: c,
		priority:  priority,
		seq:       r.nextSeq,
		name:      name,
	})
	r.nextSeq++
	sort.SliceStable(r.entries, func(i, j int) bool {
		if r.entries[i].priority != r.entries[j].priority {
			return r.entries[i].priority < r.entries[j].priority
		}
		return r.entries[i].seq > r.entries[j].seq
	})
}

// ordered returns the entries in probe order. The returned slice is shared;
// callers must not mutate it.
func (r *converterRegistry) ordered() []registeredConverter {
	return r.entries
}
