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

	models_job "github.com/SENERGY-Platform/bundle-manager/pkg/models/job"
)

func (s *Service) GetJobs(filter models_job.Filter) []models_job.Job {
	return s.jobsHdl.List(filter)
}

func (s *Service) GetJob(id string) (models_job.Job, error) {
	job, err := s.jobsHdl.Get(id)
	if err != nil {
		return models_job.Job{}, newServiceErr(fmt.Sprintf("get job (id=%s)", id), err)
	}
	return job, nil
}

func (s *Service) CancelJob(id string) error {
	if err := s.jobsHdl.Cancel(id); err != nil {
		return newServiceErr(fmt.Sprintf("cancel job (id=%s)", id), err)
	}
	return nil
}
