package main

import (
	"flag"
	"fmt"
	"log"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/statgen/gtarray"
)

func main() {
	prefix := flag.String("plink", "", "Path prefix of the PLINK fileset to process (.bed/.bim/.fam)")
	idxPath := flag.String("gti", "", "Filename of the gti (index) file to create or query")
	region := flag.String("region", "", "Optional region to query, formatted chr:start-end")
	flag.Parse()

	if *prefix == "" {
		flag.PrintDefaults()
		log.Fatalln("No PLINK fileset given")
	}

	if strings.HasPrefix(*prefix, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*prefix = filepath.Join(usr.HomeDir, (*prefix)[2:])
	}

	if *idxPath == "" {
		*idxPath = *prefix + ".gti"
	}

	r, err := gtarray.OpenPlink(*prefix)
	if err != nil {
		log.Fatalln(err)
	}
	defer r.Close()

	log.Println("Building index at", *idxPath)
	if err := gtarray.BuildGTI(r, *idxPath); err != nil {
		log.Fatalln(err)
	}

	gti, err := gtarray.OpenGTI(*idxPath)
	if err != nil {
		log.Fatalln(err)
	}
	defer gti.Close()
	gti.Metadata.FirstThousandBytes = nil

	log.Printf("GTI Metadata: %+v\n", gti.Metadata)

	if *region == "" {
		return
	}

	reg, err := parseRegion(*region)
	if err != nil {
		log.Fatalln(err)
	}

	rows, err := gti.VariantsInRegion(*reg)
	if err != nil {
		log.Fatalln(err)
	}
	for _, row := range rows {
		ga, err := r.ReadIndexed(row)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Printf("%s:%d %s maf=%.4f\n", row.Chromosome, row.Position, row.RSID, ga.MAF())
	}
	log.Println("Queried", len(rows), "variants in", reg)
}

func parseRegion(s string) (*gtarray.Region, error) {
	colon := strings.LastIndex(s, ":")
	if colon < 0 {
		return nil, pfx.Err(fmt.Errorf("region %q is not formatted chr:start-end", s))
	}

	var start, end uint32
	if _, err := fmt.Sscanf(s[colon+1:], "%d-%d", &start, &end); err != nil {
		return nil, pfx.Err(err)
	}

	return gtarray.NewRegion(s[:colon], start, end)
}
