// Copyright 2025 Poiesic Systems
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


// Package storage provides the storage abstraction layer for wordhoard.
//
// This package defines repository interfaces that decouple the dictionary
// store from the retrieval and discovery logic built on top of it.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the repository interface:
//
//	repo, err := badger.NewRepository(path)  // returns storage.EntryRepository
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Architecture
//
//   - Repository: operations shared by every repository (similarity search, transactions)
//   - EntryRepository: dictionary entries, partitioned by tenant or work scope
//
// # Usage
//
//	repo, err := badger.NewRepository("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be safe for concurrent use.
package storage
