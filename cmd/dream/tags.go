// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/index"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <hex-id>",
	Short: "List the tags attached to an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		oid, ok := id.FromHex(args[0])
		if !ok {
			return fmt.Errorf("invalid object ID %q", args[0])
		}

		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		ctx := context.Background()
		return idx.Read(ctx, func(tx *index.Tx) error {
			tags, err := tx.GetTags(id.Identified{Value: oid})
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Println(t)
			}
			return nil
		})
	},
}
