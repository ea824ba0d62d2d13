package extractor

import "testing"

// TestProtocolFields reads the acquisition bookkeeping from acqp with the
// software version preferred from visu_pars.
func TestProtocolFields(t *testing.T) {
	p := Pars{
		Acqp: mustParams(t, "acqp", `
##TITLE=Parameter List
##$PULPROG=<RARE.ppg>
##$ACQ_protocol_name=<T2_TurboRARE>
##$ACQ_scan_name=<T2_TurboRARE (E5)>
##$ACQ_method=<Bruker:RARE>
##$ACQ_institution=<SNU>
##$ACQ_station=<BioSpec 94/20>
##$NUCLEUS=( 8 )
<1H> <off> <off> <off> <off> <off> <off> <off>
##$ACQ_patient_pos=Head_Supine
##$ACQ_operator=<admin>
##$ACQ_sw_version=<PV 6.0.1>
##END=
`),
		VisuPars: mustParams(t, "visu_pars", `
##TITLE=Parameter List
##$VisuCreatorVersion=<6.0.1>
##END=
`),
	}
	info := NewProtocol(p)
	if info.PulseProgram != "RARE.ppg" {
		t.Errorf("Expected RARE.ppg, got %q", info.PulseProgram)
	}
	if info.Protocol != "T2_TurboRARE" || info.ScanMethod != "Bruker:RARE" {
		t.Errorf("Unexpected protocol fields %q %q", info.Protocol, info.ScanMethod)
	}
	if info.Nucleus != "1H" {
		t.Errorf("Expected the first channel nucleus 1H, got %q", info.Nucleus)
	}
	if info.Software != "6.0.1" {
		t.Errorf("Expected the visu_pars creator version, got %q", info.Software)
	}
	if info.SubjectPosition != "Head_Supine" {
		t.Errorf("Expected Head_Supine, got %q", info.SubjectPosition)
	}
}

// TestProtocolSoftwareFallback uses ACQ_sw_version when visu_pars is
// unavailable.
func TestProtocolSoftwareFallback(t *testing.T) {
	p := Pars{Acqp: mustParams(t, "acqp", `
##TITLE=Parameter List
##$ACQ_sw_version=<PV 5.1>
##END=
`)}
	info := NewProtocol(p)
	if info.Software != "PV 5.1" {
		t.Errorf("Expected PV 5.1, got %q", info.Software)
	}
}

// TestProtocolMissingAcqp degrades to empty fields with a warning.
func TestProtocolMissingAcqp(t *testing.T) {
	info := NewProtocol(Pars{})
	if info.PulseProgram != "" || info.Protocol != "" {
		t.Errorf("Expected empty fields, got %+v", info)
	}
	if len(info.Warns) == 0 {
		t.Error("Expected a warning for the missing acqp")
	}
}
