/*
Package trigsim emulates the tracker level one trigger board of the SuperNEMO
demonstrator.

The board samples the Geiger CTW frames sent by the tracker crates on every
other 800 ns clock tick and builds a hit map of the wire chamber. Each side of
the map is cut into 10 zones and 31 overlapping sliding zones. Programmable
memories (see package lut) classify the projections of every sliding zone,
then combine them into per zone in/out and left/middle/right patterns. Near
source bits are computed directly from the first layers of each zone.

The result of a sampled tick is a TrackerRecord holding one 7 bit FinaleWord
per zone and side, the zoning words derived from them and the trigger
decision.

Usage:

	tables, err := lut.DefaultTables()
	if err != nil {
		// handle error
	}
	seq, err := trigsim.NewSequencer(trigsim.Workers(0))
	if err != nil {
		// handle error
	}
	geo := seq.Geometry()
	if err = seq.Initialize(mapping.New(&geo, 0), tables); err != nil {
		// handle error
	}
	if err = seq.Run(frames); err != nil {
		// handle error
	}
	for _, r := range seq.Records() {
		fmt.Println(r.Tick, r.Decision)
	}

The electronics to geometry mapping is provided by the caller through the
Translator interface. Package mapping implements the reference mapping.

*/
package trigsim
