// Copyright 2026 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of COQPIPE.
//
//  COQPIPE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  COQPIPE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with COQPIPE.  If not, see <https://www.gnu.org/licenses/>.

package colref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeature(t *testing.T) {
	ref, err := Parse("coq_word_label_2")
	require.NoError(t, err)
	assert.Equal(t, KindFeature, ref.Kind)
	assert.Equal(t, "word_label", ref.Feature)
	assert.Equal(t, 2, ref.Position)

	ref, err = Parse("coq_genre")
	require.NoError(t, err)
	assert.Equal(t, "genre", ref.Feature)
	assert.Equal(t, 0, ref.Position)
	assert.True(t, ref.IsFeature())
}

func TestParseExternal(t *testing.T) {
	ref, err := Parse("db_celex_coq_phonology_1")
	require.NoError(t, err)
	assert.Equal(t, KindExternal, ref.Kind)
	assert.Equal(t, "celex", ref.Database)
	assert.Equal(t, "phonology", ref.Feature)
	assert.Equal(t, 1, ref.Position)
	assert.Equal(t, "db_celex_coq_phonology_1", ExternalColumn("celex", "phonology", 1))

	_, err = Parse("db_celex_phonology")
	assert.Error(t, err)
	assert.Equal(t, KindOther, MustParse("db_celex_phonology").Kind)
}

func TestParseFunction(t *testing.T) {
	ref, err := Parse("func_Freq_0a1b2c3d(Genre='news')")
	require.NoError(t, err)
	assert.Equal(t, KindFunction, ref.Kind)
	assert.Equal(t, "func_Freq_0a1b2c3d", ref.FuncID)
	assert.Equal(t, "Genre='news'", ref.GroupLabel)

	ref = MustParse("func_Freq_0a1b2c3d")
	assert.Equal(t, "func_Freq_0a1b2c3d", ref.FuncID)
	assert.Empty(t, ref.GroupLabel)
}

func TestParseOtherKinds(t *testing.T) {
	assert.Equal(t, KindInternal, MustParse(ColCorpusID).Kind)
	assert.Equal(t, KindContext, MustParse(LeftContextColumn(3)).Kind)
	assert.Equal(t, "context_lc3", MustParse(LeftContextColumn(3)).Feature)
	assert.Equal(t, KindStatistics, MustParse(ColFrequency).Kind)
	assert.Equal(t, KindStatistics, MustParse(PrefixGTest+"news").Kind)
	assert.Equal(t, KindOther, MustParse("X").Kind)
}

func TestColumnHelpers(t *testing.T) {
	assert.Equal(t, "coq_lemma_label_3", FeatureColumn("lemma_label", 3))
	assert.Equal(t, "coq_lemma_label", FeatureColumn("lemma_label", 0))
	assert.Equal(t, "coq_context_rc2", RightContextColumn(2))
	assert.True(t, IsInternal(ColRowID))
	assert.True(t, IsFunction("func_x"))
	assert.True(t, IsGTest("statistics_g_test_a:b"))
	assert.False(t, IsGTest(ColFrequency))
}
