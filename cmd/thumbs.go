package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gitlab.com/begraf/spur/config"
	"gitlab.com/begraf/spur/filesystem"
	"gitlab.com/begraf/spur/thumbs"
	"gitlab.com/begraf/spur/worker"
)

// thumbsCmd represents the thumbs command
var thumbsCmd = &cobra.Command{
	Use:   "thumbs [IMAGES-OR-DIRECTORIES...]",
	Short: "Generate cached thumbnails for a set of images",
	Long: `Takes paths of image files or folders which are then searched for
image files. A thumbnail is generated into the shared thumbnail cache for
every image that has no up-to-date cached thumbnail yet.`,
	RunE: runThumbs,
}

func init() {
	rootCmd.AddCommand(thumbsCmd)

	thumbsCmd.Flags().String("cache-dir", "", "Thumbnail cache directory override")
}

func runThumbs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("image files or directories required")
	}

	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		panic(err) // Should not happen
	}
	if cacheDir == "" {
		cacheDir = config.ThumbDirectory()
	}

	var cache *thumbs.Cache
	if cacheDir != "" {
		cache = thumbs.NewCacheAt(cacheDir)
	} else {
		cache, err = thumbs.NewCache()
		if err != nil {
			return err
		}
	}

	files, err := gatherImageFiles(args, []string{".jpeg", ".jpg", ".png"})
	if err != nil {
		return fmt.Errorf("scanning files: %w", err)
	} else if len(files) == 0 {
		return fmt.Errorf("no files")
	}

	batch := worker.Batch[string]{
		Items: files,
		Process: func(path string) error {
			if _, err := cache.Create(path); err != nil {
				log.Printf("no thumbnail for '%s': %s", path, err)
				return err
			}
			return nil
		},
		Progress: func(fraction float64) {
			fmt.Fprintf(os.Stderr, "\r%3.0f%%", fraction*100)
		},
		Done: func(processed, failed int) {
			fmt.Fprintln(os.Stderr)
			log.Printf("thumbnails: %d created, %d failed", processed, failed)
		},
	}

	batch.Run(context.Background())

	return nil
}

func gatherImageFiles(roots []string, extensions []string) ([]string, error) {
	hasExtension := func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range extensions {
			if e == ext {
				return true
			}
		}
		return false
	}

	var paths []string

	for _, root := range roots {
		if filesystem.IsDirectory(root) {
			entries, err := os.ReadDir(root)
			if err != nil {
				return nil, fmt.Errorf("read dir: %w", err)
			}
			for _, entry := range entries {
				if entry.IsDir() || !hasExtension(entry.Name()) {
					continue
				}
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
			continue
		}

		if _, err := os.Stat(root); err != nil {
			return nil, err
		}
		if !hasExtension(root) {
			fmt.Fprintf(os.Stderr, "ignoring file '%s'\n", root)
			continue
		}
		paths = append(paths, root)
	}

	return paths, nil
}
