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

var (
	searchPresent []string
	searchAbsent  []string
	searchAfter   string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List object IDs matching --present and --absent tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		present := make([]id.Object, len(searchPresent))
		for i, t := range searchPresent {
			present[i] = id.Raw(t)
		}
		absent := make([]id.Object, len(searchAbsent))
		for i, t := range searchAbsent {
			absent[i] = id.Raw(t)
		}

		var after *id.ID
		if searchAfter != "" {
			a, ok := id.FromHex(searchAfter)
			if !ok {
				return fmt.Errorf("invalid --after value %q", searchAfter)
			}
			after = &a
		}

		ctx := context.Background()
		return idx.Read(ctx, func(tx *index.Tx) error {
			it, err := tx.Search(present, absent, after)
			if err != nil {
				return err
			}
			for {
				oid, ok, err := it.Next()
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				fmt.Println(oid)
			}
		})
	},
}

func init() {
	searchCmd.Flags().StringArrayVar(&searchPresent, "present", nil, "tag that must be present (repeatable)")
	searchCmd.Flags().StringArrayVar(&searchAbsent, "absent", nil, "tag that must be absent (repeatable)")
	searchCmd.Flags().StringVar(&searchAfter, "after", "", "resume a previous page after this hex object ID")
}
