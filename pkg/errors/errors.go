/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package errors

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// New creates a RodentError for the given code. Unknown codes fall back to
// a generic internal error so that callers never get a nil definition.
func New(code ErrorCode, details string) *RodentError {
	def, ok := errorDefinitions[code]
	if !ok {
		def = errorDefinitions[RodentMisc]
	}
	return &RodentError{
		Code:       code,
		Domain:     def.domain,
		Message:    def.message,
		Details:    details,
		HTTPStatus: def.httpStatus,
		Metadata:   make(map[string]string),
	}
}

// Wrap attaches a code to an underlying error. If err is already a
// RodentError its metadata is carried over.
func Wrap(err error, code ErrorCode) *RodentError {
	if err == nil {
		return nil
	}
	re := New(code, err.Error())
	re.cause = err

	var inner *RodentError
	if errors.As(err, &inner) {
		maps.Copy(re.Metadata, inner.Metadata)
		re.Details = inner.Message
		if inner.Details != "" {
			re.Details += ": " + inner.Details
		}
	}
	return re
}

// WithMetadata adds a key/value pair and returns the same error for chaining.
func (e *RodentError) WithMetadata(key, value string) *RodentError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

func (e *RodentError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s-%d] %s", e.Domain, e.Code, e.Message)
	if e.Details != "" {
		b.WriteString(" - ")
		b.WriteString(e.Details)
	}
	return b.String()
}

func (e *RodentError) Unwrap() error {
	return e.cause
}

// Is matches on error code so that errors.Is(err, New(code, "")) works.
func (e *RodentError) Is(target error) bool {
	t, ok := target.(*RodentError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// HasCode reports whether any RodentError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var re *RodentError
		if !errors.As(err, &re) {
			return false
		}
		if re.Code == code {
			return true
		}
		err = re.cause
	}
	return false
}

// GetCode returns the outermost RodentError code, or RodentMisc.
func GetCode(err error) ErrorCode {
	var re *RodentError
	if errors.As(err, &re) {
		return re.Code
	}
	return RodentMisc
}

// Is and As mirror the standard library so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
