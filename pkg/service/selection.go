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

package service

import (
	"fmt"

	models_service "github.com/SENERGY-Platform/bundle-manager/pkg/models/service"
)

func (s *Service) GetSelection() models_service.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SetSelection replaces the selected bundle and device. Empty IDs clear a selection.
// Subscribers are only notified about values that changed.
func (s *Service) SetSelection(sel models_service.Selection) error {
	metaStr := fmt.Sprintf("set selection (bundle_id=%s device_id=%s)", sel.BundleID, sel.DeviceID)
	if sel.BundleID != "" {
		if _, err := s.bundlesHdl.Snapshot(sel.BundleID); err != nil {
			return newServiceErr(metaStr, err)
		}
	}
	if sel.DeviceID != "" {
		if _, err := s.device(sel.DeviceID); err != nil {
			return newServiceErr(metaStr, err)
		}
	}
	s.mu.Lock()
	prev := s.selection
	s.selection = sel
	s.mu.Unlock()
	if prev.BundleID != sel.BundleID {
		s.events.SelectedBundle.Publish(sel.BundleID)
	}
	if prev.DeviceID != sel.DeviceID {
		s.events.SelectedDevice.Publish(sel.DeviceID)
	}
	return nil
}
