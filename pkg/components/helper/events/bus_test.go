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

import (
	"reflect"
	"testing"
)

func TestBus(t *testing.T) {
	bus := NewBus[string]()
	var a, b []string
	unsubA := bus.Subscribe(func(v string) {
		a = append(a, v)
	})
	bus.Subscribe(func(v string) {
		b = append(b, v)
	})
	if bus.Len() != 2 {
		t.Errorf("expected 2 got %d", bus.Len())
	}
	bus.Publish("x")
	unsubA()
	unsubA()
	bus.Publish("y")
	if !reflect.DeepEqual(a, []string{"x"}) {
		t.Errorf("expected %v got %v", []string{"x"}, a)
	}
	if !reflect.DeepEqual(b, []string{"x", "y"}) {
		t.Errorf("expected %v got %v", []string{"x", "y"}, b)
	}
	if bus.Len() != 1 {
		t.Errorf("expected 1 got %d", bus.Len())
	}
	t.Run("order", func(t *testing.T) {
		bus := NewBus[int]()
		var calls []int
		for i := 0; i < 5; i++ {
			bus.Subscribe(func(v int) {
				calls = append(calls, i*10+v)
			})
		}
		bus.Publish(1)
		if !reflect.DeepEqual(calls, []int{1, 11, 21, 31, 41}) {
			t.Errorf("unexpected call order %v", calls)
		}
	})
	t.Run("unsubscribe during publish", func(t *testing.T) {
		bus := NewBus[int]()
		var n int
		var unsub func()
		unsub = bus.Subscribe(func(int) {
			n++
			unsub()
		})
		bus.Publish(0)
		bus.Publish(0)
		if n != 1 {
			t.Errorf("expected 1 got %d", n)
		}
	})
}
