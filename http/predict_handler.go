package http

import (
	"encoding/json"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"capstack/ml"
)

// Predictor 预测模型接口
type Predictor interface {
	Predict(rec ml.FeatureRecord) float64
	Trained() bool
	Metadata() ml.Metadata
}

// Predictors 三个领域模型
type Predictors struct {
	Risk    Predictor
	Layoff  Predictor
	Savings Predictor
}

type predictHandler struct {
	models Predictors
	cache  *lru.Cache[string, float64]
	logger *zap.Logger
}

type predictResponse struct {
	Model      string  `json:"model"`
	Prediction float64 `json:"prediction"`
	Trained    bool    `json:"trained"`
	Cached     bool    `json:"cached"`
}

// RegisterPredictHandlers 注册预测相关处理器
func RegisterPredictHandlers(mux *http.ServeMux, models Predictors, cacheSize int, logger *zap.Logger) error {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, float64](cacheSize)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &predictHandler{models: models, cache: cache, logger: logger}
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /api/predict/{model}", h.handlePredict)
	mux.HandleFunc("GET /api/models", h.handleModels)
	return nil
}

func (h *predictHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *predictHandler) handlePredict(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("model")
	model := h.lookup(name)
	if model == nil {
		http.Error(w, `{"error":"unknown model"}`, http.StatusNotFound)
		return
	}

	var rec ml.FeatureRecord
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	// map序列化按键排序，可作为缓存键
	key, err := cacheKey(name, rec)
	if err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if value, ok := h.cache.Get(key); ok {
		h.respond(w, predictResponse{Model: name, Prediction: value, Trained: model.Trained(), Cached: true})
		return
	}

	prediction := model.Predict(rec)
	h.cache.Add(key, prediction)
	h.respond(w, predictResponse{Model: name, Prediction: prediction, Trained: model.Trained()})
}

func (h *predictHandler) handleModels(w http.ResponseWriter, r *http.Request) {
	type modelInfo struct {
		Trained  bool        `json:"trained"`
		Metadata ml.Metadata `json:"metadata"`
	}
	response := map[string]modelInfo{}
	for name, model := range map[string]Predictor{
		"risk":    h.models.Risk,
		"layoff":  h.models.Layoff,
		"savings": h.models.Savings,
	} {
		if model == nil {
			continue
		}
		response[name] = modelInfo{Trained: model.Trained(), Metadata: model.Metadata()}
	}
	h.respond(w, response)
}

func (h *predictHandler) lookup(name string) Predictor {
	switch name {
	case "risk":
		return h.models.Risk
	case "layoff":
		return h.models.Layoff
	case "savings":
		return h.models.Savings
	default:
		return nil
	}
}

func (h *predictHandler) respond(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to write response", zap.Error(err))
	}
}

func cacheKey(model string, rec ml.FeatureRecord) (string, error) {
	canonical, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return model + ":" + string(canonical), nil
}
