// mediactl is an operator CLI for inspecting the media metadata store.
// It fetches MediaRecords directly from Firestore using the same store
// layer as the functions, so what it prints is exactly what the pipeline
// wrote.
package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/archivion/backend-GCP/internal/logging"
	"github.com/archivion/backend-GCP/internal/store"
)

// CLI flags
var (
	collectionFlag string
	projectFlag    string
	fileFlag       string
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "mediactl",
	Short: "Inspect media asset metadata records",
	Long: `mediactl reads the Firestore metadata records maintained by the media
analysis pipeline.

Records are keyed by asset ID: the lowercase hex MD5 of the uploaded
content. Pass the ID directly, or --file to compute it from a local copy
of the media.

Examples:
  mediactl get 9e107d9d372bb6826bd81d3542a419d6
  mediactl get --file ./clip.mp4
  mediactl id ./clip.mp4`,
}

var getCmd = &cobra.Command{
	Use:   "get [assetId]",
	Short: "Fetch and print a metadata record as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGet,
}

var idCmd = &cobra.Command{
	Use:   "id <file>",
	Short: "Print the asset ID for a local media file",
	Args:  cobra.ExactArgs(1),
	RunE:  runID,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&collectionFlag, "collection", logging.EnvOrDefault("METADATA_COLLECTION", "media-metadata"), "Firestore collection holding the records")
	rootCmd.PersistentFlags().StringVar(&projectFlag, "project", os.Getenv("GOOGLE_CLOUD_PROJECT"), "GCP project (default: autodetect from credentials)")
	getCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Local media file to derive the asset ID from")
	rootCmd.AddCommand(getCmd, idCmd)
}

func main() {
	logging.Init()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	assetID, err := resolveAssetID(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	records, err := openStore(ctx)
	if err != nil {
		return err
	}

	rec, err := records.Get(ctx, assetID)
	if err != nil {
		return fmt.Errorf("fetch record %s: %w", assetID, err)
	}
	if rec == nil {
		log.Warn().Str("assetId", assetID).Msg("No record found")
		return fmt.Errorf("no record for asset %s", assetID)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runID(cmd *cobra.Command, args []string) error {
	id, err := fileAssetID(args[0])
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

// resolveAssetID takes the ID from the positional arg or derives it from
// the --file flag.
func resolveAssetID(args []string) (string, error) {
	if len(args) == 1 && fileFlag != "" {
		return "", fmt.Errorf("pass either an asset ID or --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}
	if fileFlag != "" {
		return fileAssetID(fileFlag)
	}
	return "", fmt.Errorf("an asset ID or --file is required")
}

// fileAssetID computes the asset ID for a local file the same way the
// pipeline derives it from the storage notification's content hash.
func fileAssetID(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func openStore(ctx context.Context) (*store.MediaRecordStore, error) {
	project := projectFlag
	if project == "" {
		project = firestore.DetectProjectID
	}
	client, err := firestore.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("create Firestore client: %w", err)
	}
	return store.NewMediaRecordStore(client, collectionFlag), nil
}
