package server

import (
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "sync"

    "github.com/google/uuid"
    "github.com/pion/webrtc/v3"
    log "github.com/sirupsen/logrus"

    "rawplay/internal/stream"
    "rawplay/internal/version"
)

type Config struct {
    Host string
    Port int
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// StatsSource supplies the counters served on /stats.
type StatsSource interface {
    Snapshot() map[string]uint64
}

// PreviewServer lets browsers watch the render loop over WHEP. Every session
// receives the same encoded samples from the shared feed.
type PreviewServer struct {
    cfg      Config
    feed     *stream.SampleBroadcaster
    stats    StatsSource
    mu       sync.Mutex
    sessions map[string]*session
}

type session struct {
    pc     *webrtc.PeerConnection
    detach func()
}

func NewPreviewServer(cfg Config, feed *stream.SampleBroadcaster, stats StatsSource) *PreviewServer {
    return &PreviewServer{cfg: cfg, feed: feed, stats: stats, sessions: map[string]*session{}}
}

func (s *PreviewServer) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/whep", s.handleWHEPPost)
    mux.HandleFunc("/whep/", s.handleWHEPResource)
    mux.HandleFunc("/health", s.handleHealth)
    mux.HandleFunc("/stats", s.handleStats)
    mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path != "/" {
            http.NotFound(w, r)
            return
        }
        w.Header().Set("Content-Type", "text/html; charset=utf-8")
        _, _ = io.WriteString(w, indexHTML)
    })
}

// Sessions reports the number of live preview sessions.
func (s *PreviewServer) Sessions() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.sessions)
}

func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(map[string]any{
        "status":   "ok",
        "sessions": s.Sessions(),
        "version":  version.String(),
    })
}

func (s *PreviewServer) handleStats(w http.ResponseWriter, r *http.Request) {
    allowCORS(w, r)
    w.Header().Set("Content-Type", "application/json")
    snap := map[string]uint64{}
    if s.stats != nil { snap = s.stats.Snapshot() }
    _ = json.NewEncoder(w).Encode(snap)
}

func (s *PreviewServer) handleWHEPPost(w http.ResponseWriter, r *http.Request) {
    if r.Method == http.MethodOptions {
        allowCORS(w, r)
        w.WriteHeader(http.StatusNoContent)
        return
    }
    if r.Method != http.MethodPost {
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
        return
    }
    offerSDP, err := io.ReadAll(r.Body)
    if err != nil || len(offerSDP) == 0 {
        http.Error(w, "empty offer", http.StatusBadRequest)
        return
    }

    me := webrtc.MediaEngine{}
    if err := me.RegisterDefaultCodecs(); err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    api := webrtc.NewAPI(webrtc.WithMediaEngine(&me))
    pc, err := api.NewPeerConnection(webrtc.Configuration{})
    if err != nil {
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }

    id := uuid.New().String()
    log.Printf("WHEP session %s: created", id)

    videoTrack, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264}, "video", "rawplay")
    if err != nil {
        _ = pc.Close()
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    sender, err := pc.AddTrack(videoTrack)
    if err != nil {
        _ = pc.Close()
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    // Drain RTCP so the interceptors keep running.
    go func() {
        buf := make([]byte, 1500)
        for {
            if _, _, err := sender.Read(buf); err != nil { return }
        }
    }()

    if err := pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: string(offerSDP)}); err != nil {
        _ = pc.Close()
        http.Error(w, err.Error(), http.StatusBadRequest)
        return
    }
    answer, err := pc.CreateAnswer(nil)
    if err != nil {
        _ = pc.Close()
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    gatherComplete := webrtc.GatheringCompletePromise(pc)
    if err := pc.SetLocalDescription(answer); err != nil {
        _ = pc.Close()
        http.Error(w, err.Error(), http.StatusInternalServerError)
        return
    }
    <-gatherComplete

    sess := &session{pc: pc, detach: s.feed.Add(videoTrack)}
    s.mu.Lock(); s.sessions[id] = sess; s.mu.Unlock()

    pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
        log.Printf("WHEP session %s state: %s", id, state)
        if state == webrtc.PeerConnectionStateFailed || state == webrtc.PeerConnectionStateClosed || state == webrtc.PeerConnectionStateDisconnected {
            s.closeSession(id)
        }
    })

    allowCORS(w, r)
    w.Header().Set("Content-Type", "application/sdp")
    w.Header().Set("Location", "/whep/"+id)
    w.WriteHeader(http.StatusCreated)
    _, _ = io.WriteString(w, pc.LocalDescription().SDP)
}

func (s *PreviewServer) handleWHEPResource(w http.ResponseWriter, r *http.Request) {
    allowCORS(w, r)
    id := strings.TrimPrefix(r.URL.Path, "/whep/")
    switch r.Method {
    case http.MethodPatch, http.MethodOptions:
        w.WriteHeader(http.StatusNoContent)
    case http.MethodDelete:
        if !s.closeSession(id) {
            http.Error(w, "unknown session", http.StatusNotFound)
            return
        }
        w.WriteHeader(http.StatusNoContent)
    default:
        http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
    }
}

func (s *PreviewServer) closeSession(id string) bool {
    s.mu.Lock(); sess := s.sessions[id]; delete(s.sessions, id); s.mu.Unlock()
    if sess == nil { return false }
    sess.detach()
    _ = sess.pc.Close()
    log.Printf("WHEP session %s: closed", id)
    return true
}

// CloseAll ends every session, for shutdown.
func (s *PreviewServer) CloseAll() {
    s.mu.Lock()
    ids := make([]string, 0, len(s.sessions))
    for id := range s.sessions { ids = append(ids, id) }
    s.mu.Unlock()
    for _, id := range ids { s.closeSession(id) }
}

func allowCORS(w http.ResponseWriter, r *http.Request) {
    origin := r.Header.Get("Origin")
    if origin == "" { origin = "*" }
    w.Header().Set("Access-Control-Allow-Origin", origin)
    w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
    w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
    w.Header().Set("Access-Control-Expose-Headers", "Location")
}

const indexHTML = `<!doctype html>
<meta charset="utf-8" />
<title>rawplay preview</title>
<style>body{font-family:system-ui;margin:2rem}video{width:80vw;max-width:1280px;background:#000}</style>
<div>
  <button id="play">Play</button>
  <button id="stop" disabled>Stop</button>
  <pre id="stats"></pre>
</div>
<video id="v" playsinline autoplay muted></video>
<script>
let pc=null, res=null; const $=id=>document.getElementById(id);
$("play").onclick = async ()=>{
  pc=new RTCPeerConnection();
  pc.addTransceiver('video',{direction:'recvonly'});
  pc.ontrack = ev=>{$("v").srcObject=ev.streams[0] || new MediaStream([ev.track]);}
  const offer = await pc.createOffer();
  await pc.setLocalDescription(offer);
  const resp=await fetch('/whep',{method:'POST',headers:{'Content-Type':'application/sdp'},body:offer.sdp});
  res=resp.headers.get('Location'); const sdp=await resp.text();
  await pc.setRemoteDescription({type:'answer', sdp});
  $("stop").disabled=false;
}
$("stop").onclick = async ()=>{
  if(res){await fetch(res,{method:'DELETE'})} if(pc){pc.close()} $("stop").disabled=true;
}
setInterval(async ()=>{ const r=await fetch('/stats'); $("stats").textContent=await r.text(); }, 1000);
</script>`
