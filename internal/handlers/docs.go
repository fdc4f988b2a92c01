package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"airwatch/internal/analysis"
)

func queryParam(name, description, typ string, required bool) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"required":    required,
		"schema":      map[string]string{"type": typ},
	}
}

func jsonResponse(description string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{
				"schema": map[string]interface{}{
					"type":       "object",
					"properties": properties,
				},
			},
		},
	}
}

var (
	datasetParam    = queryParam("dataset", "Dataset file name inside the data directory (default: DATA_FILE)", "string", false)
	vegetationParam = queryParam("vegetation", "Vegetation ratio between 0 and 1 (default: preselected option)", "number", false)
	evParam         = queryParam("ev", "EV adoption ratio between 0 and 1 (default: preselected option)", "number", false)
	filterParam     = queryParam("filter", "Smog filter effectiveness between 0 and 1 (default: 0.25)", "number", false)

	pollutantStats = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"average": map[string]string{"type": "number"},
			"max":     map[string]string{"type": "number"},
			"min":     map[string]string{"type": "number"},
		},
	}

	statisticsSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"aqi":   pollutantStats,
			"pm2_5": pollutantStats,
			"pm10":  pollutantStats,
			"count": map[string]string{"type": "integer"},
		},
	}

	errorResponses = map[string]interface{}{
		"400": jsonResponse("Invalid parameter or missing required column", map[string]interface{}{
			"error":   map[string]string{"type": "string"},
			"message": map[string]string{"type": "string"},
			"code":    map[string]string{"type": "integer"},
			"missing": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
		}),
		"404": map[string]interface{}{"description": "Dataset not found"},
		"422": map[string]interface{}{"description": "Unparsable timestamp or numeric cell"},
	}
)

func withErrors(responses map[string]interface{}) map[string]interface{} {
	for code, r := range errorResponses {
		responses[code] = r
	}
	return responses
}

// OpenAPISpec returns the OpenAPI 3.0 specification for the AirWatch API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "AirWatch API",
			"description": "Air-quality monitoring statistics, hourly high-AQI analysis, health advisories and mitigation scenario simulation",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "AirWatch Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/statistics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Summary statistics",
					"description": "Average, maximum and minimum of AQIH, PM2.5 and PM10",
					"parameters":  []map[string]interface{}{datasetParam},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Statistics", map[string]interface{}{
							"source":     map[string]string{"type": "string"},
							"statistics": statisticsSchema,
							"entries":    map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
						}),
					}),
				},
			},
			"/api/hourly": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Hourly high-AQI distribution",
					"description": "Counts, per hour of day, the calendar hours whose mean AQI exceeded the threshold",
					"parameters": []map[string]interface{}{
						datasetParam,
						queryParam("threshold", "Severity threshold (default: 150)", "number", false),
					},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Hourly distribution; safe=true when no hour exceeded", map[string]interface{}{
							"threshold":    map[string]string{"type": "number"},
							"counts":       map[string]interface{}{"type": "object", "additionalProperties": map[string]string{"type": "integer"}},
							"exceeding":    map[string]interface{}{"type": "array", "items": map[string]string{"type": "object"}},
							"bucket_count": map[string]string{"type": "integer"},
							"safe":         map[string]string{"type": "boolean"},
							"message":      map[string]string{"type": "string"},
						}),
					}),
				},
			},
			"/api/advisory": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Health advisory for an AQI value",
					"parameters": []map[string]interface{}{queryParam("aqi", "Non-negative AQI value", "number", true)},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Advisory", map[string]interface{}{
							"aqi":     map[string]string{"type": "number"},
							"tier":    map[string]string{"type": "integer"},
							"level":   map[string]interface{}{"type": "string", "enum": analysis.AdvisoryLevels()},
							"message": map[string]string{"type": "string"},
						}),
					}),
				},
			},
			"/api/simulate": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Simulate a mitigation scenario",
					"description": "Scales AQIH, PM2.5 and PM10 by (1-vegetation)(1-ev)(1-filter)",
					"parameters":  []map[string]interface{}{datasetParam, vegetationParam, evParam, filterParam},
					"responses": withErrors(map[string]interface{}{
						"200": jsonResponse("Simulation summary", map[string]interface{}{
							"source":             map[string]string{"type": "string"},
							"current_conditions": map[string]string{"type": "object"},
							"parameters":         map[string]string{"type": "object"},
							"combined_factor":    map[string]string{"type": "number"},
							"original":           statisticsSchema,
							"adjusted":           statisticsSchema,
							"rows":               map[string]string{"type": "integer"},
						}),
					}),
				},
			},
			"/api/simulate/export": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Export adjusted data",
					"description": "Writes all original columns plus AQI_Adjusted, PM2.5_Adjusted and PM10_Adjusted to a new file and returns it",
					"parameters": []map[string]interface{}{
						datasetParam, vegetationParam, evParam, filterParam,
						queryParam("format", "csv (default) or xlsx", "string", false),
					},
					"responses": withErrors(map[string]interface{}{
						"201": map[string]interface{}{
							"description": "Exported file",
							"content": map[string]interface{}{
								"text/csv": map[string]interface{}{"schema": map[string]string{"type": "string"}},
								"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": map[string]interface{}{
									"schema": map[string]string{"type": "string", "format": "binary"},
								},
							},
						},
					}),
				},
			},
			"/api/scenario/options": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Selectable scenario ratios and defaults",
					"responses": map[string]interface{}{
						"200": jsonResponse("Options", map[string]interface{}{
							"options":            map[string]interface{}{"type": "array", "items": map[string]string{"type": "number"}},
							"defaults":           map[string]string{"type": "object"},
							"current_conditions": map[string]string{"type": "object"},
						}),
					},
				},
			},
			"/api/charts/{column}.png": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Time-series chart",
					"parameters": []map[string]interface{}{
						{
							"name":     "column",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "enum": []string{"AQIH", "PM2.5", "PM10"}},
						},
						datasetParam,
						queryParam("simulate", "Plot against the adjusted column", "boolean", false),
						vegetationParam, evParam, filterParam,
					},
					"responses": withErrors(map[string]interface{}{
						"200": map[string]interface{}{
							"description": "PNG image",
							"content": map[string]interface{}{
								"image/png": map[string]interface{}{"schema": map[string]string{"type": "string", "format": "binary"}},
							},
						},
					}),
				},
			},
			"/api/charts/hourly.png": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":    "Hourly high-AQI bar chart",
					"parameters": []map[string]interface{}{datasetParam},
					"responses": withErrors(map[string]interface{}{
						"200": map[string]interface{}{
							"description": "PNG image, or a JSON message when the air is generally safe",
						},
					}),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": jsonResponse("API is healthy", map[string]interface{}{
							"status": map[string]string{"type": "string"},
						}),
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}

// RegisterDocsRoutes registers the OpenAPI document and the Swagger UI page
func RegisterDocsRoutes(router *mux.Router) {
	router.HandleFunc(docsPath, SwaggerUI).Methods("GET")
	router.HandleFunc(openAPIPath, OpenAPISpec).Methods("GET")
}
