/*
 * Copyright (c) 2024, NVIDIA CORPORATION.  All rights reserved.
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

package model

import "fmt"

// MalformedBusDefError reports a bus-def signal description missing a
// required key, or carrying an unrecognized presence value (spec.md §7).
// It is fatal to loading the one spec file it came from; callers skip the
// file and log.
type MalformedBusDefError struct {
	Path   string
	Port   string
	Reason string
}

func (e *MalformedBusDefError) Error() string {
	return fmt.Sprintf("malformed bus def %s, port %q: %s", e.Path, e.Port, e.Reason)
}

// AmbiguousUserGroupsError reports two user-group prefixes where one
// prefixes the other, or an anonymous group coexisting with named groups
// (spec.md §7). Fatal at bus-def construction.
type AmbiguousUserGroupsError struct {
	Groups []string
}

func (e *AmbiguousUserGroupsError) Error() string {
	return fmt.Sprintf("ambiguous user_groups specified: %v", e.Groups)
}
