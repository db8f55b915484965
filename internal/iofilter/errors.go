// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package iofilter

import "errors"

// Sentinel errors for the filter chain. Wrap with fmt.Errorf("...: %w", Err*)
// to attach context; callers match with errors.Is.
var (
	ErrFilterInterface     = errors.New("iofilter: invalid filter capability combination")
	ErrFilterResultMissing = errors.New("iofilter: result requested for unknown or resultless stage")
	ErrFilterClosed        = errors.New("iofilter: operation on a closed chain")
	ErrIoRead              = errors.New("iofilter: read failed")
	ErrIoWrite             = errors.New("iofilter: write failed")
)
