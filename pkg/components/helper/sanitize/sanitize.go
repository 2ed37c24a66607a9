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

package sanitize

import "regexp"

var invalidChars = regexp.MustCompile(`[^\w\-. ]`)
var dots = regexp.MustCompile(`\.`)

// FileName replaces every character that is not a word character, dash, dot or space.
func FileName(s string) string {
	return invalidChars.ReplaceAllString(s, "_")
}

// DirName works like FileName but also replaces dots.
func DirName(s string) string {
	return dots.ReplaceAllString(FileName(s), "_")
}
