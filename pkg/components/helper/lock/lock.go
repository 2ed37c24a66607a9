/*
 * Copyright 2026 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lock

import (
	"sync"

	models_error "github.com/SENERGY-Platform/bundle-manager/pkg/models/error"
)

// RWMutex is a try-only read/write lock that reports the holder's reason when busy.
type RWMutex struct {
	mu       sync.RWMutex
	rMu      sync.Mutex
	resource string
	reason   string
}

func NewRWMutex(resource string) *RWMutex {
	return &RWMutex{resource: resource}
}

func (m *RWMutex) TryRLock() error {
	if !m.mu.TryRLock() {
		return models_error.NewResourceBusyError(m.resource, m.getReason())
	}
	return nil
}

func (m *RWMutex) RUnlock() {
	m.mu.RUnlock()
}

func (m *RWMutex) TryLock(reason string) error {
	if !m.mu.TryLock() {
		return models_error.NewResourceBusyError(m.resource, m.getReason())
	}
	m.setReason(reason)
	return nil
}

func (m *RWMutex) Unlock() {
	m.setReason("")
	m.mu.Unlock()
}

func (m *RWMutex) getReason() string {
	m.rMu.Lock()
	defer m.rMu.Unlock()
	if m.reason == "" {
		return "operation in progress"
	}
	return m.reason
}

func (m *RWMutex) setReason(reason string) {
	m.rMu.Lock()
	m.reason = reason
	m.rMu.Unlock()
}

// KeyedMutex holds at most one exclusive lock per key.
type KeyedMutex struct {
	mu   sync.Mutex
	held map[string]string
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{held: make(map[string]string)}
}

func (k *KeyedMutex) TryLock(key, reason string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if r, ok := k.held[key]; ok {
		return models_error.NewResourceBusyError(key, r)
	}
	k.held[key] = reason
	return nil
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	delete(k.held, key)
	k.mu.Unlock()
}

func (k *KeyedMutex) IsLocked(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.held[key]
	return ok
}
