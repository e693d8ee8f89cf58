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
	"os"

	"github.com/spf13/cobra"

	"github.com/mentalblood0/dream/id"
	"github.com/mentalblood0/dream/index"
)

var insertTags []string

var insertCmd = &cobra.Command{
	Use:   "insert <file>",
	Short: "Insert a file's contents as an object, attaching --tag values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		idx, err := openIndex()
		if err != nil {
			return err
		}
		defer idx.Close()

		object := id.Raw(content)
		tags := make([]id.Object, len(insertTags))
		for i, t := range insertTags {
			tags[i] = id.Raw(t)
		}

		ctx := context.Background()
		if err := idx.Write(ctx, func(tx *index.WriteTx) error {
			_, err := tx.Insert(object, tags)
			return err
		}); err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		fmt.Println(object.ID())
		return nil
	},
}

func init() {
	insertCmd.Flags().StringArrayVar(&insertTags, "tag", nil, "tag to attach (repeatable)")
}
