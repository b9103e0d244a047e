package schema

import "github.com/gyeh/noharmcheck/internal/model"

// prescriptionRefs is shared by both source formats.
var prescriptionRefs = []Reference{
	{Field: "FKSETOR", Target: model.Sectors},
	{Field: "FKMEDICAMENTO", Target: model.Medications},
	{Field: "FKUNIDADEMEDIDA", Target: model.Units},
	{Field: "FKFREQUENCIA", Target: model.Frequency},
}

// MV is the export convention of the MV hospital-information system.
var MV = SourceFormat{
	Key:   "mv",
	Label: "MV",
	Files: map[model.Category]SourceFileSchema{
		model.Prescriptions: {
			Required: []string{
				"FKHOSPITAL", "FKSETOR", "FKPRESCRICAO", "FKPESSOA", "NRATENDIMENTO",
				"DTPRESCRICAO", "DTVIGENCIA", "FKPRESMED", "FKUNIDADEMEDIDA", "FKMEDICAMENTO",
				"NOMEMEDICAMENTO", "DOSE", "FKFREQUENCIA", "VIA", "COMPLEMENTO",
				"DTSUSPENSAO", "ORIGEM", "SLAGRUPAMENTO", "SLETAPAS", "SLDOSAGEM",
				"SLTIPODOSAGEM", "SLACM", "HORARIO", "LEITO", "PRESCRITOR",
				"DTCRIACAO_ORIGEM", "CONVENIO", "PERIODO", "PERIODO_TOTAL", "ALERGIA",
			},
			Key: []string{"FKPRESMED"},
			TypeHints: map[TypeTag][]string{
				TypeNumber: {
					"FKHOSPITAL", "FKSETOR", "FKPRESCRICAO", "FKPESSOA", "NRATENDIMENTO",
					"FKPRESMED", "DOSE", "SLAGRUPAMENTO", "SLETAPAS", "SLDOSAGEM",
					"PERIODO", "PERIODO_TOTAL",
				},
				TypeDate: {"DTPRESCRICAO", "DTVIGENCIA", "DTSUSPENSAO", "DTCRIACAO_ORIGEM"},
			},
			Refs: prescriptionRefs,
		},
		model.Medications: {
			Required: []string{
				"FKHOSPITAL", "ORIGEM", "FKMEDICAMENTO", "NOME", "NAOPADRONIZADO",
				"FKUNIDADEMEDIDACUSTO", "CUSTO_PADRAO", "VL_FATOR", "CUSTO",
			},
			Key: []string{"FKMEDICAMENTO"},
			TypeHints: map[TypeTag][]string{
				TypeNumber: {"FKHOSPITAL", "FKMEDICAMENTO", "CUSTO_PADRAO", "VL_FATOR", "CUSTO"},
			},
		},
		model.Sectors: {
			Required:  []string{"FKHOSPITAL", "FKSETOR", "NOME"},
			Key:       []string{"FKSETOR"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL", "FKSETOR"}},
		},
		model.Units: {
			Required:  []string{"FKHOSPITAL", "FKUNIDADEMEDIDA", "NOME"},
			Key:       []string{"FKUNIDADEMEDIDA"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL"}},
		},
		model.Frequency: {
			Required:  []string{"FKHOSPITAL", "FKFREQUENCIA", "NOME"},
			Key:       []string{"FKFREQUENCIA"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL"}},
		},
	},
}

// Tasy is the export convention of the Tasy hospital-information system.
var Tasy = SourceFormat{
	Key:   "tasy",
	Label: "Tasy",
	Files: map[model.Category]SourceFileSchema{
		model.Prescriptions: {
			Required: []string{
				"ORIGEM", "NRATENDIMENTO", "FKPRESCRICAO", "SLAGRUPAMENTO", "SLACM",
				"SLETAPAS", "SLHORAFASE", "SLTEMPOAPLICACAO", "SLDOSAGEM", "SLTIPODOSAGEM",
				"FKPRESMED", "FKPESSOA", "FKSETOR", "DTPRESCRICAO", "DTCRIACAO_ORIGEM",
				"DTATUALIZACAO", "DTSUSPENSAO", "DTVIGENCIA", "HORARIO", "FREQUENCIADIA",
				"COMPLEMENTO", "FKMEDICAMENTO", "DOSE", "FKUNIDADEMEDIDA", "DS_UNIDADE_MEDIDA",
				"FKFREQUENCIA", "VIA", "LEITO", "PRONTUARIO", "PRESCRITOR",
				"ALERGIA", "PERIODO", "PERIODO_TOTAL", "CONVENIO",
			},
			Key: []string{"FKPRESMED"},
			TypeHints: map[TypeTag][]string{
				TypeNumber: {
					"NRATENDIMENTO", "FKPRESCRICAO", "FKPRESMED", "FKPESSOA", "FKSETOR",
					"FREQUENCIADIA", "FKMEDICAMENTO", "DOSE", "PERIODO", "PERIODO_TOTAL",
				},
				TypeDate: {"DTPRESCRICAO", "DTCRIACAO_ORIGEM", "DTATUALIZACAO", "DTSUSPENSAO", "DTVIGENCIA"},
			},
			Refs: prescriptionRefs,
		},
		model.Medications: {
			Required: []string{
				"FKHOSPITAL", "FKMEDICAMENTO", "NOME", "NAOPADRONIZADO",
				"FKUNIDADEMEDIDACUSTO", "CUSTO",
			},
			Key: []string{"FKMEDICAMENTO"},
			TypeHints: map[TypeTag][]string{
				TypeNumber: {"FKHOSPITAL", "FKMEDICAMENTO", "CUSTO"},
			},
		},
		model.Sectors: {
			Required:  []string{"FKHOSPITAL", "FKSETOR", "NOME"},
			Key:       []string{"FKSETOR"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL", "FKSETOR"}},
		},
		model.Units: {
			Required:  []string{"FKHOSPITAL", "FKUNIDADEMEDIDA", "NOME"},
			Key:       []string{"FKUNIDADEMEDIDA"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL"}},
		},
		model.Frequency: {
			Required:  []string{"FKHOSPITAL", "FKFREQUENCIA", "NOME"},
			Key:       []string{"FKFREQUENCIA"},
			TypeHints: map[TypeTag][]string{TypeNumber: {"FKHOSPITAL"}},
		},
	},
}

// Default is the unified NoHarm schema derived from MV and Tasy. It is
// computed once at init and never mutated.
var Default = MustNewRegistry("NoHarm", MV, Tasy)
