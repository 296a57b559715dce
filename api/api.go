package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/hoshinonyaruko/cobrinha/config"
	"github.com/hoshinonyaruko/cobrinha/hub"
	"github.com/hoshinonyaruko/cobrinha/input"
	"github.com/hoshinonyaruko/cobrinha/memimg"
	"github.com/hoshinonyaruko/cobrinha/render"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

const (
	defaultThumbnailWidth = 100
	maxThumbnailWidth     = 2000
	frameFileName         = "frame.png"
)

// Game 是 HTTP 层需要的游戏操作，*engine.Engine 实现了它
type Game interface {
	Start()
	Pause()
	Toggle() bool
	Reset()
	SetSpeed(speed int) int
	Snapshot() structs.Snapshot
}

// Server 汇总路由需要的依赖
type Server struct {
	Game      Game
	Input     *input.Adapter
	Frames    *memimg.Frames
	Hub       *hub.Hub
	StaticDir string
}

// NewRouter 注册全部路由
func NewRouter(s Server) *gin.Engine {
	router := gin.Default()
	// 开始
	router.POST("/start", StartHandler(s.Game))
	// 暂停/继续
	router.POST("/pause", PauseHandler(s.Game))
	// 重置
	router.POST("/reset", ResetHandler(s.Game))
	// 速度
	router.POST("/speed", SpeedHandler(s.Game))
	// 键盘和触摸输入
	router.POST("/key", KeyHandler(s.Input))
	router.POST("/touch-start", TouchStartHandler(s.Input))
	router.POST("/touch-end", TouchEndHandler(s.Input))
	// 状态和画面
	router.GET("/state", StateHandler(s.Game))
	router.GET("/frame.png", FrameHandler(s.Frames))
	router.GET("/thumbnail", ThumbnailHandler(s.Frames))
	router.GET("/render-map", RenderMapHandler(s.Frames, s.StaticDir))
	if s.Hub != nil {
		router.GET("/ws", gin.WrapF(s.Hub.ServeWS))
	}
	if s.StaticDir != "" {
		router.Static("/static", s.StaticDir) // 静态文件服务
	}
	return router
}

func StartHandler(game Game) gin.HandlerFunc {
	return func(c *gin.Context) {
		game.Start()
		c.JSON(http.StatusOK, game.Snapshot())
	}
}

// PauseHandler 运行中则暂停，否则开始
func PauseHandler(game Game) gin.HandlerFunc {
	return func(c *gin.Context) {
		game.Toggle()
		c.JSON(http.StatusOK, game.Snapshot())
	}
}

// ResetHandler 先暂停再重置
func ResetHandler(game Game) gin.HandlerFunc {
	return func(c *gin.Context) {
		game.Pause()
		game.Reset()
		c.JSON(http.StatusOK, game.Snapshot())
	}
}

func SpeedHandler(game Game) gin.HandlerFunc {
	return func(c *gin.Context) {
		speed, err := strconv.Atoi(c.Query("value"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing query parameter: value"})
			return
		}
		applied := game.SetSpeed(speed)
		c.JSON(http.StatusOK, gin.H{"speed": applied})
	}
}

func KeyHandler(adapter *input.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: key"})
			return
		}
		c.JSON(http.StatusOK, adapter.Key(key))
	}
}

func TouchStartHandler(adapter *input.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		x, y, err := queryPoint(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		adapter.TouchStart(x, y)
		c.JSON(http.StatusOK, gin.H{"message": "touch recorded"})
	}
}

func TouchEndHandler(adapter *input.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		x, y, err := queryPoint(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, adapter.TouchEnd(x, y))
	}
}

func queryPoint(c *gin.Context) (float64, float64, error) {
	x, err := strconv.ParseFloat(c.Query("x"), 64)
	if err != nil {
		return 0, 0, errors.New("invalid or missing query parameter: x")
	}
	y, err := strconv.ParseFloat(c.Query("y"), 64)
	if err != nil {
		return 0, 0, errors.New("invalid or missing query parameter: y")
	}
	return x, y, nil
}

func StateHandler(game Game) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, game.Snapshot())
	}
}

// FrameHandler 返回最近一帧的 PNG
func FrameHandler(frames *memimg.Frames) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.DefaultQuery("name", memimg.Latest)
		img, found := frames.Get(name)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "No frame rendered yet"})
			return
		}
		data, err := render.EncodeBytes(img)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to encode frame"})
			return
		}
		c.Data(http.StatusOK, "image/png", data)
	}
}

// ThumbnailHandler 返回缩小后的最近一帧
func ThumbnailHandler(frames *memimg.Frames) gin.HandlerFunc {
	return func(c *gin.Context) {
		width, err := strconv.Atoi(c.DefaultQuery("width", strconv.Itoa(defaultThumbnailWidth)))
		if err != nil || width < 1 || width > maxThumbnailWidth {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameter: width"})
			return
		}
		img, found := frames.Get(memimg.Latest)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "No frame rendered yet"})
			return
		}
		var buf bytes.Buffer
		if err := render.Encode(&buf, render.Thumbnail(img, width)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to encode thumbnail"})
			return
		}
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

// RenderMapHandler 把最近一帧保存到静态目录并返回地址
func RenderMapHandler(frames *memimg.Frames, staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, found := frames.Get(memimg.Latest)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "No frame rendered yet"})
			return
		}
		if err := render.SavePNG(filepath.Join(staticDir, frameFileName), img); err != nil {
			log.WithError(err).Warn("failed to save frame")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save frame"})
			return
		}
		imageUrl := fmt.Sprintf("http://%s/static/%s", config.GetConfigValue("selfpath").(string), frameFileName)
		c.JSON(http.StatusOK, gin.H{"image_url": imageUrl})
	}
}
