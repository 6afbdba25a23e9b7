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

// Package handshake runs the bilateral signing round that produces a block: both parties
// offer the next link of their personal chains, co-sign the resulting header and append
// the block to their ledgers. It is a two-phase commit between exactly two participants,
// a round either yields a block signed by both sides or leaves both ledgers untouched.
package handshake
