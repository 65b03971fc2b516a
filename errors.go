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

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// UnsupportedFormatError is returned when no converter accepts the input
// under any of the sniffed stream-info candidates.
type UnsupportedFormatError struct {
	Extension string
	MIMEType  string
}

func (e *UnsupportedFormatError) Error() string {
	parts := []string{"unsupported format"}
	if e.Extension != "" {
		parts = append(parts, fmt.Sprintf("extension=%q", e.Extension))
	}
	if e.MIMEType != "" {
		parts = append(parts, fmt.Sprintf("mime=%q", e.MIMEType))
	}
	return strings.Join(parts, " ")
}

// FailedConversionAttempt records a converter that accepted the input but
// failed to convert it. Err may be nil when the converter produced no
// execution info.
type FailedConversionAttempt struct {
	Converter string
	Err       error
}

// ConversionError is returned when at least one converter accepted the input
// but every accepting converter failed. Attempts are in the order they were
// made.
type ConversionError struct {
	Attempts []FailedConversionAttempt
}

func (e *ConversionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "File conversion failed after %d attempts:", len(e.Attempts))
	for _, a := range e.Attempts {
		b.WriteString("\n")
		if a.Err == nil {
			fmt.Fprintf(&b, "%s provided no execution info.", a.Converter)
			continue
		}
		fmt.Fprintf(&b, "%s threw %s with message: %v", a.Converter, errorTypeName(a.Err), a.Err)
	}
	return b.String()
}

func (e *ConversionError) Unwrap() error {
	if len(e.Attempts) > 0 {
		return e.Attempts[len(e.Attempts)-1].Err
	}
	return nil
}

// MissingDependencyError is returned by a converter whose optional runtime
// dependency (an external tool or a configured client) is absent. The engine
// treats it like any other conversion failure; it exists so callers can tell
// "backend not installed" apart from "document broken".
type MissingDependencyError struct {
	Converter  string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s requires %s, which is not available", e.Converter, e.Dependency)
}

// IsUnsupportedFormat reports whether the error is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

// IsMissingDependency reports whether the error is a MissingDependencyError.
func IsMissingDependency(err error) bool {
	var target *MissingDependencyError
	return errors.As(err, &target)
}

// errorTypeName returns the concrete type name of err without package path
// or pointer marker, for attempt reporting.
func errorTypeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return fmt.Sprintf("%T", err)
	}
	return t.Name()
}
