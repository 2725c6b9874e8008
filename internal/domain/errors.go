// SPDX-License-Identifier: Apache-2.0

package domain

import "errors"

var ErrUnknownEventType = errors.New("unknown event type")
var ErrEmptyPatternSteps = errors.New("pattern has no steps")
var ErrNonPositiveWeight = errors.New("pattern weight must be positive")
var ErrInvalidPatternStart = errors.New("pattern must start with ORDER_CREATED")
var ErrSchemaMismatch = errors.New("event does not conform to registered schema")
