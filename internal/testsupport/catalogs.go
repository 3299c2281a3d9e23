package testsupport

import "signalgen/internal/signal"

// EEGCatalog mirrors the pattern table the generation service publishes for
// EEG.
func EEGCatalog() signal.PatternCatalog {
	return signal.PatternCatalog{
		Family: signal.FamilyEEG,
		Categories: []signal.CategoryPatterns{
			{Category: signal.CategoryNormal, Patterns: []signal.Pattern{
				{DisplayName: "Normal Awake", ID: "normal_awake"},
				{DisplayName: "Sleep Stage 1", ID: "sleep_stage1"},
				{DisplayName: "Sleep Stage 2", ID: "sleep_stage2"},
				{DisplayName: "Sleep Stage 3", ID: "sleep_stage3"},
				{DisplayName: "REM Sleep", ID: "rem_sleep"},
			}},
			{Category: signal.CategoryAbnormal, Patterns: []signal.Pattern{
				{DisplayName: "Interictal Spikes", ID: "interictal_spikes"},
				{DisplayName: "3 Hz Spike-Wave", ID: "spike_wave_3hz"},
				{DisplayName: "Focal Spikes", ID: "focal_spikes"},
				{DisplayName: "Polyspike", ID: "polyspike"},
				{DisplayName: "Hypsarrhythmia", ID: "hypsarrhythmia"},
				{DisplayName: "Focal Slowing", ID: "focal_slowing"},
				{DisplayName: "Diffuse Slowing", ID: "diffuse_slowing"},
				{DisplayName: "Triphasic Waves", ID: "triphasic_waves"},
				{DisplayName: "Periodic Discharges", ID: "periodic_discharges"},
				{DisplayName: "Burst Suppression", ID: "burst_suppression"},
				{DisplayName: "Alpha Coma", ID: "alpha_coma"},
				{DisplayName: "Flat EEG", ID: "flat_eeg"},
			}},
		},
	}
}

// ECGCatalog mirrors the pattern table the generation service publishes for
// ECG.
func ECGCatalog() signal.PatternCatalog {
	return signal.PatternCatalog{
		Family: signal.FamilyECG,
		Categories: []signal.CategoryPatterns{
			{Category: signal.CategoryNormal, Patterns: []signal.Pattern{
				{DisplayName: "Normal Sinus Rhythm", ID: "normal_sinus"},
				{DisplayName: "Sinus Bradycardia", ID: "sinus_bradycardia"},
				{DisplayName: "Sinus Tachycardia", ID: "sinus_tachycardia"},
			}},
			{Category: signal.CategoryAbnormal, Patterns: []signal.Pattern{
				{DisplayName: "First Degree Heart Block", ID: "first_degree_block"},
				{DisplayName: "Second Degree Mobitz I", ID: "second_degree_mobitz1"},
				{DisplayName: "Second Degree Mobitz II", ID: "second_degree_mobitz2"},
				{DisplayName: "Third Degree Heart Block", ID: "third_degree_block"},
				{DisplayName: "Left Bundle Branch Block", ID: "lbbb"},
				{DisplayName: "Right Bundle Branch Block", ID: "rbbb"},
				{DisplayName: "STEMI", ID: "stemi"},
				{DisplayName: "NSTEMI", ID: "nstemi"},
				{DisplayName: "Atrial Fibrillation", ID: "atrial_fibrillation"},
				{DisplayName: "Ventricular Tachycardia", ID: "ventricular_tachycardia"},
				{DisplayName: "Hyperkalemia", ID: "hyperkalemia"},
				{DisplayName: "Hypokalemia", ID: "hypokalemia"},
				{DisplayName: "Pericarditis", ID: "pericarditis"},
				{DisplayName: "Pulmonary Embolism", ID: "pulmonary_embolism"},
				{DisplayName: "Digitalis Effect", ID: "digitalis_effect"},
			}},
		},
	}
}

// EEGChannels is the 10-20 electrode montage the service reports for EEG.
var EEGChannels = []string{"Fp1", "Fp2", "F3", "F4", "C3", "C4", "P3", "P4", "O1", "O2", "F7", "F8", "T3", "T4", "Cz", "Pz"}

// CatalogFor returns the reference catalog for family.
func CatalogFor(family signal.Family) signal.PatternCatalog {
	if family == signal.FamilyECG {
		return ECGCatalog()
	}
	return EEGCatalog()
}
