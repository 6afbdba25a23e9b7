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

// Package hash provides the fixed size hash type used to address blocks.
//
// Every block in a personal chain is identified by THashH of its stable
// marshalled content, which is sha256(blake2b-512(x)). The zero value of Hash
// is reserved as the genesis sentinel: it is the previous hash of the first
// block of every identity.
package hash
