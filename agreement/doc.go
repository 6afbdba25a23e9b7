/*
 * Copyright 2018 The CovenantSQL Authors.
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

/*
Package agreement defines the contracts recorded in bilateral ledger blocks and the codec
turning them into block payloads.

A payload is a msgpack envelope carrying the kind of the agreement and the canonical
encoding of its body. Map keys are sorted, nil collections are encoded as empty ones and
times are normalized to UTC, so that two parties holding the same logical agreement
always produce the same bytes.
*/
package agreement
