// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
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

package main

import (
	"log"

	"archfilter/internal/config"
	"archfilter/internal/protocolhelper"
)

// runRemote serves the stanza-agnostic remote worker, reached only
// through the ssh command line ProtocolHelper.ProtocolRemoteGet builds.
func runRemote(args []string) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("archfilter remote: %v", err)
	}
	if err := serve(cfg, protocolhelper.ServiceRemote); err != nil {
		log.Fatalf("archfilter remote: %v", err)
	}
}
