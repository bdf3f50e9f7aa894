package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/statgen/gtarray"
)

func main() {
	prefix := flag.String("plink", "example", "Path prefix of the PLINK fileset to process (.bed/.bim/.fam)")
	flag.Parse()

	if strings.HasPrefix(*prefix, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*prefix = filepath.Join(usr.HomeDir, (*prefix)[2:])
	}

	r, err := gtarray.OpenPlink(*prefix)
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()

	log.Println("Samples:", r.NumSamples(), "Variants:", r.NumVariants())

	i := 0
	for _, sample := range r.Samples {
		fmt.Println(i, sample.SampleID)
		i++

		if i > 10 {
			break
		}
	}
	log.Println("Iterated over", i, "samples")

	gr := r.NewGenotypeReader()
	for i := 1; ; i++ {
		ga := gr.Read()
		if ga == nil {
			break
		}

		counts, err := ga.EncodeAdditive()
		if err != nil {
			log.Fatalln(err)
		}
		nonMissing := 0
		for _, c := range counts {
			if !math.IsNaN(c) {
				nonMissing++
			}
		}

		fmt.Printf("%s maf=%.4f hwe_p=%.4g complete=%d/%d\n",
			ga.Variant(), ga.MAF(), ga.HWEPval(), nonMissing, ga.Len())

		if i >= 25 {
			log.Println("Stopping after", i, "variants")
			break
		}
	}
	if err := gr.Error(); err != nil {
		log.Fatalln(err)
	}
}
