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

package events

import "sync"

// Bus delivers published values to every subscriber in subscription order.
type Bus[T any] struct {
	mu   sync.RWMutex
	next int
	ids  []int
	subs map[int]func(T)
}

func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[int]func(T))}
}

// Subscribe registers f and returns a function that removes it again.
func (b *Bus[T]) Subscribe(f func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.ids = append(b.ids, id)
	b.subs[id] = f
	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(id)
		})
	}
}

func (b *Bus[T]) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
	for i, v := range b.ids {
		if v == id {
			b.ids = append(b.ids[:i:i], b.ids[i+1:]...)
			break
		}
	}
}

// Publish calls every subscriber synchronously. Subscribers may unsubscribe while being called.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	subs := make([]func(T), 0, len(b.ids))
	for _, id := range b.ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()
	for _, f := range subs {
		f(v)
	}
}

func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ids)
}
