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

// DisplayNames contains display labels of well-known
// internal column names
var DisplayNames = map[string]string{
	ColQueryString:                      "Query string",
	FeatureQueryTok:                     "Query item",
	ColFrequency:                        "Frequency",
	ColColumnTotal:                      "ALL",
	ColContextLeft:                      "Left context",
	ColContextRight:                     "Right context",
	ColContextStr:                       "Context",
	"coq_collocate_label":               "Collocate",
	"coq_collocate_frequency":           "Collocate frequency",
	"coq_collocate_frequency_left":      "Left context frequency",
	"coq_collocate_frequency_right":     "Right context frequency",
	"coq_conditional_probability":       "Pcond",
	"coq_conditional_probability_left":  "Pcond (left)",
	"coq_conditional_probability_right": "Pcond (right)",
	"coq_mutual_information":            "Mutual information",
	"statistics_corpus_size":            "Corpus size",
	"statistics_subcorpus_size":         "Subcorpus size",
}
