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

package job

import "time"

type Job struct {
	ID          string     `json:"id"`
	Error       *Error     `json:"error"`
	Created     time.Time  `json:"created"`
	Started     *time.Time `json:"started"`
	Completed   *time.Time `json:"completed"`
	Canceled    *time.Time `json:"canceled"`
	Description string     `json:"description"`
	Progress    *Progress  `json:"progress,omitempty"`
}

type Progress struct {
	Done   int64  `json:"done"`
	Total  int64  `json:"total"`
	Status string `json:"status"`
}

type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Status = string

const (
	Pending   Status = "pending"
	Running   Status = "running"
	Canceled  Status = "canceled"
	Completed Status = "completed"
	Failed    Status = "error"
	OK        Status = "ok"
)

type Filter struct {
	Status   Status    `form:"status"`
	SortDesc bool      `form:"sort_desc"`
	Since    time.Time `form:"since"`
	Until    time.Time `form:"until"`
}
