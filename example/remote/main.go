package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/statgen/gtarray"
)

// Downloads a PLINK fileset from a Google Cloud Storage bucket and prints a
// per-variant summary.
func main() {
	bucket := flag.String("bucket", "", "GCS bucket holding the fileset")
	object := flag.String("object", "", "Object prefix within the bucket (.bed/.bim/.fam appended)")
	dest := flag.String("dest", os.TempDir(), "Local directory to download into")
	flag.Parse()

	if *bucket == "" || *object == "" {
		flag.PrintDefaults()
		log.Fatalln("Both -bucket and -object are required")
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}
	defer client.Close()

	prefix := filepath.Join(*dest, filepath.Base(*object))
	for _, ext := range []string{".bed", ".bim", ".fam"} {
		if err := download(ctx, client, *bucket, *object+ext, prefix+ext); err != nil {
			log.Fatalln(err)
		}
	}

	r, err := gtarray.OpenPlink(prefix)
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()

	log.Println("Samples:", r.NumSamples(), "Variants:", r.NumVariants())

	gr := r.NewGenotypeReader()
	for ga := gr.Read(); ga != nil; ga = gr.Read() {
		fmt.Printf("%s maf=%.4f\n", ga.Variant(), ga.MAF())
	}
	if err := gr.Error(); err != nil {
		log.Fatalln(err)
	}
}

func download(ctx context.Context, client *storage.Client, bucket, object, localPath string) error {
	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return pfx.Err(fmt.Errorf("gs://%s/%s: %w", bucket, object, err))
	}
	defer rc.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return pfx.Err(err)
	}

	// Validate the magic bytes of the binary genotype file while copying
	if filepath.Ext(localPath) == ".bed" {
		_, err = gtarray.CopyBED(f, rc)
	} else {
		_, err = io.Copy(f, rc)
	}
	if err != nil {
		f.Close()
		return pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	log.Println("Downloaded", "gs://"+bucket+"/"+object, "to", localPath)
	return nil
}
