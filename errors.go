/*
 * Copyright (C) 2015-2026 S[&]T, The Netherlands.
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions are met:
 *
 * 1. Redistributions of source code must retain the above copyright notice,
 *    this list of conditions and the following disclaimer.
 *
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * 3. Neither the name of the copyright holder nor the names of its
 *    contributors may be used to endorse or promote products derived from
 *    this software without specific prior written permission.
 *
 * THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
 * AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
 * IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
 * ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
 * LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
 * CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
 * SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
 * INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
 * CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
 * ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package harp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is the closed set of error categories that can cross an operation
// boundary. The set is intentionally small and stable; new failure modes
// should be expressed as an existing Kind with a more specific message
// rather than by growing this enum.
type Kind int

const (
	KindOutOfMemory Kind = iota
	KindInvalidArgument
	KindInvalidIndex
	KindInvalidName
	KindInvalidFormat
	KindInvalidDatetime
	KindInvalidType
	KindInvalidVariable
	KindArrayDimsMismatch
	KindArrayOutOfBounds
	KindVariableNotFound
	KindUnitConversion
	KindOperation
	KindOperationSyntax
	KindImport
	KindExport
	KindUnsupportedProduct
	KindNoData
)

var kindNames = map[Kind]string{
	KindOutOfMemory:        "out of memory",
	KindInvalidArgument:    "invalid argument",
	KindInvalidIndex:       "invalid index",
	KindInvalidName:        "invalid name",
	KindInvalidFormat:      "invalid format",
	KindInvalidDatetime:    "invalid datetime",
	KindInvalidType:        "invalid type",
	KindInvalidVariable:    "invalid variable",
	KindArrayDimsMismatch:  "array dimensions mismatch",
	KindArrayOutOfBounds:   "array index out of bounds",
	KindVariableNotFound:   "variable not found",
	KindUnitConversion:     "unit conversion error",
	KindOperation:          "operation error",
	KindOperationSyntax:    "operation syntax error",
	KindImport:             "import error",
	KindExport:             "export error",
	KindUnsupportedProduct: "unsupported product",
	KindNoData:             "no data",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the diagnostic type returned by every fallible operation in this
// package. The message is the "most recent diagnostic string" of §7: a
// one-line, human-readable description that a caller may extend with
// trailing context (e.g. "(variable 'pressure')").
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Errorf builds an *Error of the given kind, in the teacher's style of
// building one formatted diagnostic per failure site.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WithContext extends a diagnostic with trailing context, e.g.
// err.WithContext("variable %q", name) appends "(variable \"x\")".
func (e *Error) WithContext(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, msg: e.msg + " (" + fmt.Sprintf(format, args...) + ")"}
}

// Wrap attaches additional context to err while preserving its Kind when
// err is itself an *Error produced by this package; any other error is
// wrapped as is and carries no Kind (KindOf reports false for it). Uses
// github.com/pkg/errors so callers can still recover the underlying cause
// with errors.Cause.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// KindOf reports the Kind of err if it (or something it wraps) is an
// *Error produced by this package.
func KindOf(err error) (Kind, bool) {
	var herr *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			herr = e
			break
		}
		cause := errors.Cause(err)
		if cause == err {
			break
		}
		err = cause
	}
	if herr == nil {
		return 0, false
	}
	return herr.Kind, true
}
